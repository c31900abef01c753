// Package apierror holds the JSON bodies the bridge sends back on failure.
// The sale screen and the admin panel show Detail to the operator as is.
package apierror

// APIError is the body of every 4xx/5xx answer except validation failures.
type APIError struct {
	Detail string `json:"detail"`
}

func New(detalle string) *APIError {
	return &APIError{Detail: detalle}
}

// ValidationError names each rejected field and the rule it broke
// ("required", "gt", "exists") so the form can mark it.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(campos map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: campos}
}
