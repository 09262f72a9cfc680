package enums

import "fmt"

// DocumentState tracks the lifecycle of a warehouse document.
type DocumentState string

const (
	DocumentStateDraft  DocumentState = "draft"
	DocumentStateSigned DocumentState = "signed"
)

var validDocumentStates = []DocumentState{
	DocumentStateDraft,
	DocumentStateSigned,
}

// String implements fmt.Stringer.
func (s DocumentState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DocumentState.
func (s DocumentState) IsValid() bool {
	for _, candidate := range validDocumentStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDocumentState converts raw input into a DocumentState.
func ParseDocumentState(value string) (DocumentState, error) {
	for _, candidate := range validDocumentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document state %q", value)
}
