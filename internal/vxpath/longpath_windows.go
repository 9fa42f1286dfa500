//go:build windows

package vxpath

import "strings"

// longPath converts paths exceeding the legacy 260-character limit to
// extended-length form ("\\?\...") for I/O. Accessor results themselves never
// carry this prefix; it is applied only at the syscall boundary.
func longPath(p string) string {
	if len(p) < 248 || strings.HasPrefix(p, `\\?\`) {
		return p
	}
	return `\\?\` + p
}
