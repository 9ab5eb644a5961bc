package store

import "strings"

// NormalizeHandle canonicalizes a Telegram handle: trims whitespace, drops a
// leading "@", lower-cases, and re-prefixes with "@". It is applied before
// every read and write so that "(product, handle)" uniqueness holds no matter
// how the operator typed the handle. An empty or whitespace-only input yields
// the empty string.
func NormalizeHandle(handle string) string {
	h := strings.TrimSpace(handle)
	if h == "" {
		return ""
	}
	h = strings.TrimPrefix(h, "@")
	if h == "" {
		return ""
	}
	return "@" + strings.ToLower(h)
}
