// Package digest builds the multi-section text document produced by one
// report run. A Digest is a pure text buffer with two formatting policies
// (plain lines and quoted blocks); it knows nothing about what produced each
// section.
package digest

import "strings"

// SectionDelimiter is the sentinel token separating digest sections. The
// publisher splits the stored draft on it to build one messaging block per
// section.
const SectionDelimiter = "##SECTION##"

const quotePrefix = "> "

// Digest accumulates the sections of one run. It is append-only: lines are
// added to the current section until StartSection seals it and opens the
// next. Construct with New; a Digest must not be copied after first use.
type Digest struct {
	sealed []string
	cur    strings.Builder
}

// New returns an empty digest with one open section.
func New() *Digest {
	return &Digest{}
}

// Append adds a line plus a trailing newline to the current section.
func (d *Digest) Append(line string) {
	d.cur.WriteString(line)
	d.cur.WriteByte('\n')
}

// AppendQuoted adds text with every line prefixed by the quote marker, plus a
// trailing newline. Generated content is appended this way so it stays
// visually distinguished from the framing lines.
func (d *Digest) AppendQuoted(text string) {
	d.cur.WriteString(quotePrefix)
	d.cur.WriteString(strings.ReplaceAll(text, "\n", "\n"+quotePrefix))
	d.cur.WriteByte('\n')
}

// StartSection seals the current section and opens a new empty one.
func (d *Digest) StartSection() {
	d.sealed = append(d.sealed, d.cur.String())
	d.cur.Reset()
}

// Sections returns every section accumulated so far, the open one last.
func (d *Digest) Sections() []string {
	out := make([]string, 0, len(d.sealed)+1)
	out = append(out, d.sealed...)
	out = append(out, d.cur.String())
	return out
}

// String renders the digest document: sections joined by the delimiter token
// on its own line.
func (d *Digest) String() string {
	return strings.Join(d.Sections(), SectionDelimiter+"\n")
}

// Split breaks a rendered digest document into its non-empty, trimmed
// sections. Blank sections produced by stray delimiters are dropped.
func Split(doc string) []string {
	parts := strings.Split(doc, SectionDelimiter)
	sections := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		sections = append(sections, trimmed)
	}
	return sections
}
