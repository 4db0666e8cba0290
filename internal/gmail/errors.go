package gmail

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRecipients is returned when a message has no To recipients.
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrAttachmentTooLarge is wrapped by AttachmentUnreadableError when a
	// file exceeds MaxAttachmentSize.
	ErrAttachmentTooLarge = fmt.Errorf("attachment exceeds maximum size of %d bytes", MaxAttachmentSize)
)

// AttachmentUnreadableError is returned when an attachment path cannot be
// read. The whole build is aborted.
type AttachmentUnreadableError struct {
	Path string
	Err  error
}

func (e *AttachmentUnreadableError) Error() string {
	return fmt.Sprintf("cannot read attachment %s: %v", e.Path, e.Err)
}

func (e *AttachmentUnreadableError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the Gmail API call fails. StatusCode is the
// HTTP status reported by the API, or 0 if no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to send email: %v", e.Err)
	}
	return fmt.Sprintf("failed to send email (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
