package notifications

import "log"

// Kind categorizes a delivered notification.
type Kind string

const (
	KindReminder   Kind = "reminder"
	KindCompletion Kind = "completion"
)

// Delivery hands a notification to whatever displays it. Delivery is
// fire-and-forget: a failure to display must never block or corrupt the
// schedule, so callers log errors and move on.
type Delivery interface {
	Deliver(title, body string, kind Kind) error
	Cancel(key string)
	CancelAll()
}

// LogDelivery writes notifications to the process log. It is the fallback
// when no broker is configured and the double of choice in tests.
type LogDelivery struct{}

func NewLogDelivery() *LogDelivery {
	return &LogDelivery{}
}

func (d *LogDelivery) Deliver(title, body string, kind Kind) error {
	log.Printf("Notification [%s] %s: %s", kind, title, body)
	return nil
}

func (d *LogDelivery) Cancel(key string) {
	log.Printf("Notification cancel requested for %s", key)
}

func (d *LogDelivery) CancelAll() {
	log.Println("Notification cancel-all requested")
}
