package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends rendered emails through one reusable Mailgun client.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

// NewMailgun builds the client once. eu selects the EU API region.
func NewMailgun(domain, apiKey, sender string, eu bool) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if eu {
		client.SetAPIBase(mg.APIBaseEU)
	}
	return &Mailgun{client: client, Sender: sender}
}

// Send delivers one message. html is optional; tags (e.g. the template name) show up in Mailgun analytics.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string, tags ...string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if len(tags) > 0 {
		if err := msg.AddTag(tags...); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
