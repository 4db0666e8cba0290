// Package gmail builds messages and sends them through the Gmail API.
//
// Build and BuildMessage assemble an Envelope: one text or HTML body part
// plus any number of file attachments, serialized to RFC 2822 and encoded the
// way users.messages.send expects. Client submits an Envelope with a single
// API call. Sender ties these to a google.CredentialSource so a caller only
// supplies an EmailMessage.
//
// Example usage:
//
//	sender := gmail.NewSender(authorizer)
//	res, err := sender.Send(ctx, &gmail.EmailMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Message sent; id=" + res.ID)
package gmail
