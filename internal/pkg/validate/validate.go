package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ID trims an opaque identifier and reports whether anything is left.
func ID(value string) (string, bool) {
	id := strings.TrimSpace(value)
	return id, id != ""
}
