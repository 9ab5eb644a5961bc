package bot

import "regexp"

// phonePattern matches the Korean mobile format announced to winners,
// e.g. 010-1234-5678. Hyphens are mandatory.
var phonePattern = regexp.MustCompile(`^\d{3}-\d{4}-\d{4}$`)

// ValidPhone reports whether the input matches the accepted phone format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
