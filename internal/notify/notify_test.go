package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/makershowcase/backend/internal/models"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *recordingNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, recipient)
	return nil
}

func TestEntryApprovedNotifiesOwner(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier)

	dispatcher.EntryApproved(models.Entry{
		ID:          1,
		Title:       "Cedar birdhouse",
		AuthorName:  "Dana",
		AuthorPhone: "+15551234567",
	})

	assert.Equal(t, []string{"+15551234567"}, notifier.sent)
}

func TestEntryApprovedSkipsMissingPhone(t *testing.T) {
	notifier := &recordingNotifier{}
	dispatcher := NewDispatcher(notifier)

	dispatcher.EntryApproved(models.Entry{ID: 2, Title: "No phone"})

	assert.Empty(t, notifier.sent)
}

func TestEntryApprovedSwallowsDeliveryFailure(t *testing.T) {
	notifier := &recordingNotifier{fail: true}
	dispatcher := NewDispatcher(notifier)

	// Must not panic or surface the error in any way.
	dispatcher.EntryApproved(models.Entry{
		ID:          3,
		Title:       "Failing",
		AuthorPhone: "+15550000000",
	})
}
