// Package domain defines the core types and interfaces of the check-in kiosk.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinIdentifierLength is the shortest scan the debounce will submit.
const DefaultMinIdentifierLength = 5

// MaxIdentifierLength caps the identifier field for every input source.
const MaxIdentifierLength = 64

// NormalizeIdentifier trims surrounding whitespace from a scanned or typed
// identifier.
func NormalizeIdentifier(raw string) string {
	return strings.TrimSpace(raw)
}

// EligibleForAutoSubmit reports whether raw, once trimmed, is long enough
// (in characters) to be submitted without an explicit trigger.
func EligibleForAutoSubmit(raw string, minLen int) bool {
	id := NormalizeIdentifier(raw)
	return id != "" && utf8.RuneCountInString(id) >= minLen
}

// SubmissionState tracks the submit lifecycle.
type SubmissionState int32

const (
	Idle SubmissionState = iota
	InFlight
)

// String returns a human-readable submission state.
func (s SubmissionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}
