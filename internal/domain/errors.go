package domain

import "errors"

var (
	// ErrMissingRequiredField is returned when a record reaching the matcher
	// lacks a required field (product name, customer email/name). This is a
	// contract violation by the ingestion layer, not a degradable condition.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrMissingColumn is returned when an uploaded table lacks a required column
	ErrMissingColumn = errors.New("missing required column")

	// ErrDraftNotFound is returned when a draft ID does not exist
	ErrDraftNotFound = errors.New("draft not found")

	// ErrDraftNotEditable is returned when editing a draft that was already sent
	ErrDraftNotEditable = errors.New("draft already sent and cannot be edited")

	// ErrDraftNotApproved is returned when sending a draft that is not approved
	ErrDraftNotApproved = errors.New("draft must be approved before sending")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSendFailure is returned when the mail transport rejects a message
	ErrSendFailure = errors.New("email send failed")
)
