package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	ContentTypeText = "Text"
	ContentTypeHTML = "HTML"
)

// NewMailMessage builds a message for recipients with a Text or HTML body.
func NewMailMessage(subject, body string, html bool, recipients []string) MailMessage {
	ct := ContentTypeText
	if html {
		ct = ContentTypeHTML
	}
	to := make([]Recipient, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, Recipient{EmailAddress: EmailAddress{Address: r}})
	}
	return MailMessage{Subject: subject, Body: ItemBody{ContentType: ct, Content: body}, ToRecipients: to}
}

// SendMail posts msg from sender's mailbox and keeps a copy in Sent Items.
// Graph accepts the message with 202; any other status is an error.
func (c *Client) SendMail(ctx context.Context, token, sender string, msg MailMessage) error {
	status, err := c.postJSON(ctx, "/users/"+url.PathEscape(sender)+"/sendMail", token, sendMailRequest{Message: msg, SaveToSentItems: true})
	if err != nil {
		return err
	}
	if status != http.StatusAccepted {
		return fmt.Errorf("sendMail returned status %d, want %d", status, http.StatusAccepted)
	}
	return nil
}
