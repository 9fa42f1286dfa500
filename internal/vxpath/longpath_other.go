//go:build !windows

package vxpath

// longPath is a no-op outside Windows; the 260-character legacy limit and its
// "\\?\" extended-length workaround are Windows-only.
func longPath(p string) string { return p }
