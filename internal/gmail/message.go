package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	gomail "gopkg.in/mail.v2"
)

// Body content types.
const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

// EmailMessage is the input to BuildMessage and Sender.Send.
type EmailMessage struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []string // file paths
}

// BodyPart is the single text part of an Envelope.
type BodyPart struct {
	ContentType string
	Text        string
}

// AttachmentPart is one attached file.
type AttachmentPart struct {
	Filename string
	Data     []byte
}

// Envelope is a fully assembled message, ready to hand to Client.Send.
// It is not modified after Build returns.
type Envelope struct {
	recipients  []string
	subject     string
	body        BodyPart
	attachments []AttachmentPart
	raw         string
}

// Recipients returns the To, Cc and Bcc addresses in that order.
func (e *Envelope) Recipients() []string {
	return append([]string(nil), e.recipients...)
}

// Subject returns the unencoded subject.
func (e *Envelope) Subject() string {
	return e.subject
}

// Body returns the body part.
func (e *Envelope) Body() BodyPart {
	return e.body
}

// Attachments returns the attachment parts in input order.
func (e *Envelope) Attachments() []AttachmentPart {
	parts := make([]AttachmentPart, len(e.attachments))
	for i, a := range e.attachments {
		parts[i] = AttachmentPart{Filename: a.Filename, Data: append([]byte(nil), a.Data...)}
	}
	return parts
}

// Raw returns the RFC 2822 message encoded as base64url, the form the Gmail
// API expects in Message.Raw.
func (e *Envelope) Raw() string {
	return e.raw
}

// Size returns the length of Raw.
func (e *Envelope) Size() int {
	return len(e.raw)
}

// Build assembles an envelope addressed to recipients.
func Build(recipients []string, subject, body string, isHTML bool, attachments []string) (*Envelope, error) {
	return BuildMessage(&EmailMessage{
		To:          recipients,
		Subject:     subject,
		Body:        body,
		IsHTML:      isHTML,
		Attachments: attachments,
	})
}

// BuildMessage assembles msg into an Envelope. Every attachment is read
// before anything is encoded; if any cannot be read the build fails with an
// *AttachmentUnreadableError.
func BuildMessage(msg *EmailMessage) (*Envelope, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}
	for _, list := range [][]string{msg.To, msg.Cc, msg.Bcc} {
		for i, addr := range list {
			if strings.TrimSpace(addr) == "" {
				return nil, fmt.Errorf("recipient %d is empty", i+1)
			}
			if strings.ContainsAny(addr, "\r\n") {
				return nil, fmt.Errorf("recipient %d contains a line break", i+1)
			}
		}
	}

	parts := make([]AttachmentPart, 0, len(msg.Attachments))
	for _, path := range msg.Attachments {
		part, err := readAttachment(path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	contentType := ContentTypePlain
	if msg.IsHTML {
		contentType = ContentTypeHTML
	}

	m := gomail.NewMessage()
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody(contentType, msg.Body)
	for _, part := range parts {
		data := part.Data
		m.Attach(part.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	var buf bytes.Buffer
	// The writer omits Bcc since SMTP carries it in the envelope. Gmail reads
	// it from the message and strips it before delivery, so it goes first.
	if len(msg.Bcc) > 0 {
		buf.WriteString("Bcc: " + strings.Join(msg.Bcc, ", ") + "\r\n")
	}
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	recipients := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	return &Envelope{
		recipients:  recipients,
		subject:     msg.Subject,
		body:        BodyPart{ContentType: contentType, Text: msg.Body},
		attachments: parts,
		raw:         base64.URLEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
