package errors

// Registered error codes.
const (
	CodeScopeMissing      = "F001"
	CodeUnsupportedType   = "F002"
	CodeInvalidField      = "F003"
	CodeProtocolViolation = "F004"
	CodeConfigInvalid     = "F005"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeScopeMissing: {
		Category: CategoryScope,
		Message:  "No active filter scope",
		Detail:   "The filter accessor was called with a context that has no provider. Provide the engine with Scope.Provide before handing the context to descendants.",
		DocURL:   "https://vango.dev/docs/filtersync/errors/F001",
	},
	CodeUnsupportedType: {
		Category: CategoryBinding,
		Message:  "Unsupported filter type",
		Detail:   "Filter state must be a flat struct of string, number and boolean fields, or a querycodec.Record.",
		DocURL:   "https://vango.dev/docs/filtersync/errors/F002",
	},
	CodeInvalidField: {
		Category: CategoryBinding,
		Message:  "Filter field could not be bound",
		Detail:   "A value from the address bar does not fit the declared field type. The field keeps its zero value.",
		DocURL:   "https://vango.dev/docs/filtersync/errors/F003",
	},
	CodeProtocolViolation: {
		Category: CategoryProtocol,
		Message:  "Protocol violation",
		Detail:   "The client sent a malformed frame or an event the session cannot accept in its current state.",
		DocURL:   "https://vango.dev/docs/filtersync/errors/F004",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "filtersync.json or a FILTERSYNC_* environment variable could not be parsed.",
		DocURL:   "https://vango.dev/docs/filtersync/errors/F005",
	},
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
