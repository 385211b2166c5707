package notify

import (
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/makershowcase/backend/internal/models"
)

// Notifier performs best-effort delivery of a single message.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// TwilioNotifier delivers via SMS using the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(accountSID, authToken, from string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: from}
}

func (n *TwilioNotifier) Send(recipient, subject, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(n.from)
	params.SetBody(subject + "\n" + body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send sms to %s: %w", recipient, err)
	}
	return nil
}

// LogNotifier is the fallback when Twilio is not configured; it only logs.
type LogNotifier struct{}

func (LogNotifier) Send(recipient, subject, body string) error {
	log.Printf("📣 notification to %s: %s", recipient, subject)
	return nil
}

// Dispatcher fans out moderation notifications. Delivery is fire-and-forget:
// callers invoke it in a goroutine and a failure is only ever logged, never
// surfaced to the transition that triggered it.
type Dispatcher struct {
	notifier Notifier
}

func NewDispatcher(n Notifier) *Dispatcher {
	return &Dispatcher{notifier: n}
}

// NewDispatcherFromEnv picks Twilio when TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN
// and TWILIO_FROM_NUMBER are all set, and the log-only notifier otherwise.
func NewDispatcherFromEnv() *Dispatcher {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")

	if sid != "" && token != "" && from != "" {
		return NewDispatcher(NewTwilioNotifier(sid, token, from))
	}
	log.Println("Twilio not configured, notifications will only be logged")
	return NewDispatcher(LogNotifier{})
}

// EntryApproved tells the entry's owner their submission went live.
func (d *Dispatcher) EntryApproved(entry models.Entry) {
	if entry.AuthorPhone == "" {
		return
	}

	subject := "Your showcase entry was approved!"
	body := fmt.Sprintf("Hi %s, your entry %q is now live and open for votes.",
		entry.AuthorName, entry.Title)

	if err := d.notifier.Send(entry.AuthorPhone, subject, body); err != nil {
		log.Printf("Failed to notify owner of entry %d: %v", entry.ID, err)
	}
}
