package models

import "time"

// Interaction is one record of a handled query. It is immutable once
// created: the context window only appends and evicts, never edits.
type Interaction struct {
	// ID is the unique identifier for this interaction.
	ID string `json:"id"`
	// Timestamp is when the interaction completed.
	Timestamp time.Time `json:"timestamp"`
	// Query is the raw user text.
	Query string `json:"query"`
	// Response is the result the agent produced.
	Response *Result `json:"response"`
	// AgentType is the category of the agent that answered.
	AgentType Category `json:"agent_type"`
}
