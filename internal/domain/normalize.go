package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is applied to registrant name fields on submission.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TrimmedOrNil returns nil when s is empty after trimming.
func TrimmedOrNil(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}
