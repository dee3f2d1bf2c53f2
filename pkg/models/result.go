package models

// ResultStatus represents the outcome of an agent dispatch.
type ResultStatus string

const (
	// StatusSuccess indicates the agent produced a usable response.
	StatusSuccess ResultStatus = "success"
	// StatusError indicates the agent failed or returned malformed data.
	StatusError ResultStatus = "error"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// Result is the payload every agent returns and every caller receives.
// HandleQuery never surfaces raw errors; failures arrive as Results with
// StatusError and a human-readable message.
type Result struct {
	// Response is the human-readable answer text.
	Response string `json:"response"`
	// Data carries optional structured payload (prices, pairs, quotes).
	Data map[string]any `json:"data,omitempty"`
	// Status is success or error.
	Status ResultStatus `json:"status"`
	// Type is the category of the agent that produced the result.
	Type Category `json:"type"`
}

// NewResult builds a success Result for the given category.
func NewResult(category Category, response string, data map[string]any) *Result {
	return &Result{
		Response: response,
		Data:     data,
		Status:   StatusSuccess,
		Type:     category,
	}
}

// NewErrorResult builds an error Result for the given category.
func NewErrorResult(category Category, message string) *Result {
	return &Result{
		Response: message,
		Status:   StatusError,
		Type:     category,
	}
}

// OK returns true if the result reports success.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}
