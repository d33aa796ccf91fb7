package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"compressx/internal/domain"
	"compressx/internal/infra"
)

const recordCreatedSubject = "New File Uploaded on cloudinary"

// Notifier fires a best-effort email whenever a metadata record is created.
// Delivery runs detached from the caller; failures are logged and swallowed
// so record creation never rolls back on a dead relay.
type Notifier struct {
	mailer  Mailer
	logger  *infra.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier constructs a notifier. A nil mailer disables delivery while
// keeping the call sites uniform.
func NewNotifier(mailer Mailer, logger *infra.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{mailer: mailer, logger: logger, timeout: timeout}
}

// RecordCreated schedules exactly one notification attempt for the record
// and returns immediately.
func (n *Notifier) RecordCreated(record domain.Record) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(record)
	}()
}

// Wait blocks until all scheduled notification attempts have finished. Used
// during shutdown and in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(record domain.Record) {
	if n.mailer == nil {
		n.logger.Debug().Str("record_id", record.ID).Msg("mail relay not configured, skipping notification")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	body := fmt.Sprintf("<h2>Hello</h2><p>File Name: %s</p>", record.Name)
	if err := n.mailer.Send(ctx, record.Email, recordCreatedSubject, body); err != nil {
		n.logger.Error().
			Err(err).
			Str("record_id", record.ID).
			Str("to", record.Email).
			Msg("record notification failed")
		return
	}
	n.logger.Info().
		Str("record_id", record.ID).
		Str("to", record.Email).
		Msg("record notification sent")
}
