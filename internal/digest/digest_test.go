package digest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppend(t *testing.T) {
	d := New()
	d.Append("*Here is your weekly tropical outlook report:*")

	got := d.String()
	want := "*Here is your weekly tropical outlook report:*\n"
	if got != want {
		t.Errorf("Append: got %q, want %q", got, want)
	}
}

func TestAppendQuoted_SingleLine(t *testing.T) {
	d := New()
	d.AppendQuoted("No tropical cyclones expected this week.")

	got := d.String()
	want := "> No tropical cyclones expected this week.\n"
	if got != want {
		t.Errorf("AppendQuoted: got %q, want %q", got, want)
	}
}

func TestAppendQuoted_MultiLine(t *testing.T) {
	d := New()
	d.AppendQuoted("line one\nline two\nline three")

	got := d.String()
	want := "> line one\n> line two\n> line three\n"
	if got != want {
		t.Errorf("AppendQuoted: got %q, want %q", got, want)
	}
}

// Applying the quoted append twice with identical text must yield two
// independent correctly prefixed blocks with no delimiter contamination.
func TestAppendQuoted_Idempotent(t *testing.T) {
	d := New()
	d.AppendQuoted("STORM")
	d.AppendQuoted("STORM")

	got := d.String()
	want := "> STORM\n> STORM\n"
	if got != want {
		t.Errorf("double AppendQuoted: got %q, want %q", got, want)
	}
	if strings.Contains(got, SectionDelimiter) {
		t.Errorf("quoted append leaked the section delimiter: %q", got)
	}
}

func TestStartSection(t *testing.T) {
	d := New()
	d.Append("first")
	d.StartSection()
	d.Append("second")

	got := d.String()
	want := "first\n" + SectionDelimiter + "\nsecond\n"
	if got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}

	sections := d.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0] != "first\n" || sections[1] != "second\n" {
		t.Errorf("unexpected sections: %q", sections)
	}
}

func TestString_MatchesDraftLayout(t *testing.T) {
	// Mirrors the shape the report service writes: framing line, quoted
	// generated block, blank line, then the next section.
	d := New()
	d.Append("*Beep boop! Here is your weekly tropical outlook report:*")
	d.AppendQuoted("STORM")
	d.Append("")
	d.StartSection()
	d.Append("*Here are a few notes about this week:*")
	d.AppendQuoted("TRIVIA")

	want := "*Beep boop! Here is your weekly tropical outlook report:*\n" +
		"> STORM\n" +
		"\n" +
		"##SECTION##\n" +
		"*Here are a few notes about this week:*\n" +
		"> TRIVIA\n"
	if got := d.String(); got != want {
		t.Errorf("rendered digest mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "two sections",
			doc:  "first block\n##SECTION##\nsecond block\n",
			want: []string{"first block", "second block"},
		},
		{
			name: "blank sections dropped",
			doc:  "\n##SECTION##\nonly block\n##SECTION##\n  \n",
			want: []string{"only block"},
		},
		{
			name: "no delimiter",
			doc:  "single block",
			want: []string{"single block"},
		},
		{
			name: "empty document",
			doc:  "",
			want: []string{},
		},
		{
			name: "whitespace only",
			doc:  "  \n\t\n",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.doc)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	d := New()
	d.AppendQuoted("STORM")
	d.Append("")
	d.StartSection()
	d.AppendQuoted("TRIVIA")
	d.Append("")
	d.StartSection()
	d.AppendQuoted("FUN")

	got := Split(d.String())
	want := []string{"> STORM", "> TRIVIA", "> FUN"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
