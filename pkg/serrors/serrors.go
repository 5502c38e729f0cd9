package serrors

import "fmt"

// Base is a structured error carrying a stable machine-readable code next to
// the human-readable message. Codes are part of the API surface and must not
// change between releases.
type Base struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Base) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, message, details string) *Base {
	return &Base{Code: code, Message: message, Details: details}
}

func NewFieldRequiredError(field string) *Base {
	return &Base{
		Code:    "FIELD_REQUIRED",
		Message: fmt.Sprintf("field %q is required", field),
		Details: field,
	}
}
