package logging

import (
	"regexp"
)

// Secrets that can leak into error text. Webhook URLs carry their token in
// the path, and *url.Error from a failed POST repeats the full URL. The
// Anthropic pattern runs first because it is the more specific of the two
// key shapes.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	slackWebhookPattern = regexp.MustCompile(`(hooks\.slack\.com/services/)[A-Za-z0-9/_-]+`)
)

// SanitizeError returns the error message with API keys and webhook tokens
// masked, safe to put in a log line.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = slackWebhookPattern.ReplaceAllString(msg, "${1}****")

	return msg
}
