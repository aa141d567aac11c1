// Package prompt composes the natural-language instructions sent to the
// text-generation backend. Everything here is a pure function of its inputs;
// the clock and the randomness source are supplied by the caller so report
// runs stay deterministic under test.
package prompt

import (
	"fmt"
	"strings"
)

const (
	// ContentSeparator joins fetched source content inside the storm prompt.
	ContentSeparator = "\n\n---\n\n"

	// SystemMeteorologist primes the backend before the storm report prompt.
	SystemMeteorologist = "You are a meteorologist."
)

// JoinContent joins the non-empty fetched source texts with the separator
// line. Sources that degraded to the empty string are dropped so the prompt
// carries no stray separators.
func JoinContent(parts []string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		nonEmpty = append(nonEmpty, part)
	}
	return strings.Join(nonEmpty, ContentSeparator)
}

// StormReport builds the instruction asking the backend to check the joined
// bulletin content for tropical cyclones and hurricanes this week.
func StormReport(content string) string {
	return strings.TrimSpace(
		"Check the following tropical weather reports and discussions for any tropical cyclones or hurricanes this week.\n\n" + content)
}

// CulturalTrivia builds the instruction for trivia notes about the week
// starting on the given day. Being direct curbs fluff in the response, and
// the no-dates clause keeps the backend from placing things on wrong days.
func CulturalTrivia(weekStart string) string {
	return fmt.Sprintf("List 5 diverse cultural trivia that is related to the week starting on %s. Do not mention any dates.", weekStart)
}

// FunActivity builds the instruction for a weekend activity suggestion.
// "Generate for me" rather than a question yields more direct descriptions.
func FunActivity(topic, month string) string {
	return fmt.Sprintf("Generate for me a fun weekend activity that is related to %s and the month of %s.", topic, month)
}
