package utils

import "strings"

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseEmailList splits a comma separated list of addresses, normalizing each
// one and dropping empties and duplicates. Input order is kept.
func ParseEmailList(raw string) []string {
	var emails []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		email := NormalizeEmail(part)
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}
