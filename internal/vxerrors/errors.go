// Package vxerrors defines the closed error-kind taxonomy shared across vx's
// resolver, installer, downloader, and executor, generalizing the predecessor's
// per-manager ad-hoc error structs (pkg/manager.ErrManagerNotFound,
// ErrChecksumMismatch, ErrAssetNotFound) into one exhaustive set of typed
// errors with structured fields
package vxerrors

import "fmt"

// Kind identifies one of the closed set of error kinds
type Kind string

const (
	KindToolNotFound        Kind = "tool_not_found"
	KindVersionNotFound     Kind = "version_not_found"
	KindNoMatchingVersion   Kind = "no_matching_version"
	KindDownloadFailed      Kind = "download_failed"
	KindChecksumMismatch    Kind = "checksum_mismatch"
	KindExtractionFailed    Kind = "extraction_failed"
	KindExecutableNotFound  Kind = "executable_not_found"
	KindAlreadyInstalled    Kind = "already_installed"
	KindInstallationFailed  Kind = "installation_failed"
	KindLockFileInconsistent Kind = "lock_file_inconsistent"
	KindIoError             Kind = "io_error"
	KindCancelledByUser     Kind = "cancelled_by_user"
)

// exitCodes maps error kinds onto process exit codes
var exitCodes = map[Kind]int{
	KindToolNotFound:         127,
	KindVersionNotFound:      127,
	KindNoMatchingVersion:    127,
	KindDownloadFailed:       74,
	KindChecksumMismatch:     74,
	KindExtractionFailed:     74,
	KindExecutableNotFound:   74,
	KindInstallationFailed:   74,
	KindLockFileInconsistent: 65,
	KindIoError:              74,
	KindCancelledByUser:      130,
}

// ExitCode returns the process exit code associated with kind, defaulting to 1.
func ExitCode(kind Kind) int {
	if code, ok := exitCodes[kind]; ok {
		return code
	}
	return 1
}

// Error is a structured vx error: a kind plus the domain-specific fields
// needed to render a precise diagnostic without string parsing.
type Error struct {
	Kind       Kind
	Tool       string
	Version    string
	URL        string
	Path       string
	Reason     string
	Remedy     string
	Expected   string // checksum mismatch
	Actual     string // checksum mismatch
	Wrapped    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Tool != "" {
		msg += " tool=" + e.Tool
	}
	if e.Version != "" {
		msg += " version=" + e.Version
	}
	if e.URL != "" {
		msg += " url=" + e.URL
	}
	if e.Path != "" {
		msg += " path=" + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Kind == KindChecksumMismatch {
		msg += fmt.Sprintf(" (expected %s, got %s)", e.Expected, e.Actual)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Diagnostic renders the multi-line user-visible diagnostic required by
// the design: kind, tool/version in context, attempted URL/path, and a
// suggested remediation.
func (e *Error) Diagnostic() string {
	s := "error: " + e.Error() + "\n"
	if e.Remedy != "" {
		s += "  suggestion: " + e.Remedy + "\n"
	}
	return s
}

func ToolNotFound(tool string) error {
	return &Error{Kind: KindToolNotFound, Tool: tool, Reason: "not declared by any provider and not found on PATH"}
}

// ToolNotFoundSuggest is ToolNotFound with a "did you mean" remedy attached;
// suggestion is "" when nothing close enough was found, in which case it
// behaves exactly like ToolNotFound.
func ToolNotFoundSuggest(tool, suggestion string) error {
	err := &Error{Kind: KindToolNotFound, Tool: tool, Reason: "not declared by any provider and not found on PATH"}
	if suggestion != "" {
		err.Remedy = "did you mean \"" + suggestion + "\"?"
	}
	return err
}

func VersionNotFound(tool, version string) error {
	return &Error{Kind: KindVersionNotFound, Tool: tool, Version: version}
}

func NoMatchingVersion(tool, constraint string) error {
	return &Error{Kind: KindNoMatchingVersion, Tool: tool, Version: constraint,
		Remedy: "run 'vx list " + tool + "' to see available versions"}
}

func DownloadFailed(url, reason string, wrapped error) error {
	return &Error{Kind: KindDownloadFailed, URL: url, Reason: reason, Wrapped: wrapped}
}

func ChecksumMismatch(path, expected, actual string) error {
	return &Error{Kind: KindChecksumMismatch, Path: path, Expected: expected, Actual: actual}
}

func ExtractionFailed(path, reason string, wrapped error) error {
	return &Error{Kind: KindExtractionFailed, Path: path, Reason: reason, Wrapped: wrapped}
}

func ExecutableNotFound(tool, version, path string) error {
	return &Error{Kind: KindExecutableNotFound, Tool: tool, Version: version, Path: path,
		Reason: "no candidate executable_paths entry exists after layout processing"}
}

func AlreadyInstalled(tool, version string) error {
	return &Error{Kind: KindAlreadyInstalled, Tool: tool, Version: version}
}

func InstallationFailed(tool, version, reason string, wrapped error) error {
	return &Error{Kind: KindInstallationFailed, Tool: tool, Version: version, Reason: reason, Wrapped: wrapped}
}

func LockFileInconsistent(tool, reason string) error {
	return &Error{Kind: KindLockFileInconsistent, Tool: tool, Reason: reason,
		Remedy: "run 'vx lock' to refresh"}
}

func IoError(path string, wrapped error) error {
	return &Error{Kind: KindIoError, Path: path, Wrapped: wrapped}
}

func CancelledByUser() error {
	return &Error{Kind: KindCancelledByUser, Reason: "^C"}
}

// KindOf extracts the Kind of err if it (or something it wraps) is a vx
// *Error, for callers like the smart executor that need to map an arbitrary
// resolution/installation failure onto the design's exit-code table without
// knowing which component produced it.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Is reports whether err (or something it wraps) is a vx *Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
