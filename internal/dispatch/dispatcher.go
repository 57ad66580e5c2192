package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot-backend/internal/mailer"
	"github.com/mailpilot/mailpilot-backend/internal/model"
	"github.com/mailpilot/mailpilot-backend/internal/queue"
)

// Config holds the per-campaign dispatch knobs. Zero values are replaced by
// the defaults below.
type Config struct {
	Subject string
	// Retries is the number of extra attempts after the first send fails.
	Retries int
	// Workers is the number of concurrent senders draining the queue.
	Workers int
	// Pause throttles outbound rate: slept after every recipient.
	Pause time.Duration
	// RetryDelay is slept between attempts for the same recipient.
	RetryDelay time.Duration
}

const (
	DefaultRetries    = 1
	DefaultWorkers    = 5
	DefaultPause      = 5 * time.Second
	DefaultRetryDelay = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Retries < 0 {
		c.Retries = DefaultRetries
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Pause < 0 {
		c.Pause = DefaultPause
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Dispatcher drains one campaign's recipient queue with a fixed pool of
// workers. Each worker renders, picks the next pooled account, sends,
// retries on failure, and finalizes the shared status. There is no
// coordinator: the worker whose finalization brings remaining to zero flips
// the campaign to completed.
type Dispatcher struct {
	cfg         Config
	pool        *AccountPool
	sender      mailer.Sender
	status      *CampaignStatus
	templates   map[string]string
	attachments []mailer.Attachment
	events      queue.Publisher
	log         zerolog.Logger

	jobs   chan model.Contact
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires a dispatcher for one campaign run. events may be nil when no
// delivery-event sink is configured.
func New(
	cfg Config,
	pool *AccountPool,
	sender mailer.Sender,
	status *CampaignStatus,
	templates map[string]string,
	attachments []mailer.Attachment,
	events queue.Publisher,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg.withDefaults(),
		pool:        pool,
		sender:      sender,
		status:      status,
		templates:   templates,
		attachments: attachments,
		events:      events,
		log:         logger,
	}
}

// Start populates the work queue, marks the status running, and launches the
// workers. It returns immediately; callers poll the status for progress.
func (d *Dispatcher) Start(contacts []model.Contact) {
	d.status.Begin(len(contacts))

	d.jobs = make(chan model.Contact, len(contacts))
	for _, c := range contacts {
		d.jobs <- c
	}
	close(d.jobs)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}

	d.log.Info().
		Int("contacts", len(contacts)).
		Int("workers", d.cfg.Workers).
		Int("accounts", d.pool.Size()).
		Msg("campaign started")
}

// Stop cancels the run. Workers observe the cancellation before their next
// pop and while sleeping; recipients still in the queue are finalized as
// unprocessed so the status converges.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	wlog := d.log.With().Int("worker", id).Logger()

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case contact, ok := <-d.jobs:
			if !ok {
				return
			}
			d.process(ctx, wlog, contact)
			if !sleepCtx(ctx, d.cfg.Pause) {
				d.drain()
				return
			}
		}
	}
}

// drain empties the queue after cancellation so remaining reaches zero and
// the completion transition still fires. The channel is shared, so workers
// drain cooperatively.
func (d *Dispatcher) drain() {
	for contact := range d.jobs {
		d.finalize(contact, model.Account{}, 0, fmt.Errorf("campaign stopped"))
	}
}

// process runs one recipient through the attempt loop. A per-recipient
// failure never fails the campaign.
func (d *Dispatcher) process(ctx context.Context, wlog zerolog.Logger, contact model.Contact) {
	tmpl, err := SelectTemplate(d.templates, contact.Language)
	if err != nil {
		wlog.Error().Str("to", contact.Email).Str("language", contact.Language).Msg("no template available")
		d.finalize(contact, model.Account{}, 0, err)
		return
	}
	body := Render(tmpl, contact.Name)

	var (
		lastErr error
		account model.Account
	)
	attempts := 0

	for attempt := 0; attempt <= d.cfg.Retries; attempt++ {
		account = d.pool.Next()
		attempts++

		err := d.sender.Send(ctx, account, mailer.Message{
			To:          contact.Email,
			Subject:     d.cfg.Subject,
			Body:        body,
			Attachments: d.attachments,
		})
		if err == nil {
			wlog.Info().Str("to", contact.Email).Str("account", account.Email).Msg("email sent")
			d.finalize(contact, account, attempts, nil)
			return
		}

		lastErr = err
		wlog.Warn().
			Str("to", contact.Email).
			Str("account", account.Email).
			Int("attempt", attempts).
			Err(err).
			Msg("send failed")

		if attempt < d.cfg.Retries {
			// Retry with the next account in rotation after a short pause.
			if !sleepCtx(ctx, d.cfg.RetryDelay) {
				break
			}
		}
	}

	d.finalize(contact, account, attempts, lastErr)
}

// finalize decrements remaining exactly once per recipient, records the
// error, and publishes the delivery event.
func (d *Dispatcher) finalize(contact model.Contact, account model.Account, attempts int, err error) {
	ev := model.DeliveryEvent{
		Type:       model.DeliverySent,
		Recipient:  contact.Email,
		Account:    account.Email,
		Attempts:   attempts,
		OccurredAt: time.Now(),
	}

	var finished bool
	if err != nil {
		ev.Type = model.DeliveryFailed
		ev.LastError = err.Error()
		finished = d.status.Done(fmt.Sprintf("Failed to send to %s: %v", contact.Email, err))
	} else {
		finished = d.status.Done("")
	}

	if d.events != nil {
		if perr := d.events.Publish(queue.EventsQueue, ev); perr != nil {
			d.log.Warn().Err(perr).Msg("failed to publish delivery event")
		}
	}

	if finished {
		d.log.Info().Msg("campaign completed")
	}
}

// sleepCtx sleeps for dur unless the context is cancelled first. Returns
// false on cancellation.
func sleepCtx(ctx context.Context, dur time.Duration) bool {
	if dur <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
