package models

// Decision is a routing choice: the target category, the score that
// justified it, and a reason for logs. It is ephemeral and consumed
// immediately by the orchestrator.
type Decision struct {
	// Category is the selected agent category.
	Category Category `json:"category"`
	// Score is the confidence score that won the selection.
	Score float64 `json:"score"`
	// Fallback is true when no category cleared the threshold and the
	// decision came from continuity or the default category.
	Fallback bool `json:"fallback"`
	// Reason explains why this category was selected.
	Reason string `json:"reason"`
}
