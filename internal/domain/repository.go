package domain

import "context"

// DraftRepository defines the interface for draft persistence
type DraftRepository interface {
	Save(ctx context.Context, draft *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	List(ctx context.Context, filter DraftFilter) ([]*Draft, error)
	Update(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, id string) error
}

// Sender defines the interface for the external mail transport
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CopyWriter defines the interface for an optional AI copy generator.
// Implementations produce an email body for one customer and their
// recommendations; callers fall back to template composition on error.
type CopyWriter interface {
	WriteBody(ctx context.Context, customer Customer, recs []Recommendation, senderName string) (string, error)
}
