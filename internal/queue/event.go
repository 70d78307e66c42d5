// Package queue defines message payloads exchanged over the message broker.
package queue

// LoanQueueName is the durable queue carrying loan activity events.
const LoanQueueName = "loan.activity"

// LoanEvent is published whenever a copy is borrowed or returned.
// It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type LoanEvent struct {
	RecordID   uint64 `json:"record_id"`
	UserID     uint64 `json:"user_id"`
	UserEmail  string `json:"user_email"`
	BookID     uint64 `json:"book_id"`
	BookTitle  string `json:"book_title"`
	Action     string `json:"action"` // BORROW | RETURN
	OccurredAt string `json:"occurred_at"`
}
