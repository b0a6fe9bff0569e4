package logger

import "strings"

// RedactEmail masks an email address for logging.
// "john.doe@example.com" -> "jo***@example.com"; short local parts are fully masked.
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactEmails applies RedactEmail to every address.
func RedactEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, RedactEmail(e))
	}
	return out
}
