package domain

import "time"

// DraftStatus tracks a draft through the review/approve/send workflow.
type DraftStatus string

const (
	StatusDraft    DraftStatus = "draft"
	StatusApproved DraftStatus = "approved"
	StatusSent     DraftStatus = "sent"
	StatusFailed   DraftStatus = "failed"
)

// Draft is one outbound email draft produced for a customer. Subject and
// bodies are editable until the draft is sent.
type Draft struct {
	ID              string           `json:"id"`
	BatchID         string           `json:"batchId"`
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	Subject         string           `json:"subject"`
	Body            string           `json:"body"`
	HTMLBody        string           `json:"htmlBody,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
	Status          DraftStatus      `json:"status"`
	SendError       string           `json:"sendError,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	SentAt          *time.Time       `json:"sentAt,omitempty"`
}

// DraftUpdate carries the editable fields of a draft. Nil means "leave as is".
type DraftUpdate struct {
	Subject  *string `json:"subject,omitempty"`
	Body     *string `json:"body,omitempty"`
	HTMLBody *string `json:"htmlBody,omitempty"`
}

// DraftFilter narrows List queries. Zero values match everything.
type DraftFilter struct {
	BatchID string
	Status  DraftStatus
}
