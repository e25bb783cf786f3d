package models

// -----------------------------------------------------------------------------
// Stream message pushed to websocket subscribers
// -----------------------------------------------------------------------------

const (
	StreamTypeInitial = "INITIAL"
	StreamTypeUpdate  = "UPDATE"
)

type MStreamMessage struct {
	Type      string   `json:"type"` // "INITIAL" or "UPDATE"
	Quotes    []MQuote `json:"quotes"`
	Timestamp int64    `json:"timestamp"`
}
