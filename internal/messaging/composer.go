package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/types"
)

// Config controls the simulated delays and the journal location.
type Config struct {
	SendDelay  time.Duration
	DraftDelay time.Duration
	DataDir    string // "" disables the journal
}

// DefaultConfig mirrors the composer's observed latencies.
func DefaultConfig() Config {
	return Config{SendDelay: 2 * time.Second, DraftDelay: time.Second}
}

// Composer records sends and drafts.
type Composer struct {
	cfg     Config
	journal *Journal
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	messages []Message // insertion order; drafts and sent messages
	index    map[types.MessageID]int
}

// NewComposer creates a composer and replays the journal when configured.
func NewComposer(cfg Config, logger *zap.Logger) (*Composer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Composer{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		index:  make(map[types.MessageID]int),
	}
	if cfg.DataDir == "" {
		return c, nil
	}

	j, err := OpenJournal(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	c.journal = j

	msgs, skipped, err := j.Load()
	if err != nil {
		logger.Warn("message journal replay incomplete", zap.Error(err))
	}
	if skipped > 0 {
		logger.Warn("skipped malformed journal lines", zap.Int("count", skipped))
	}
	for _, m := range msgs {
		c.apply(m)
	}
	return c, nil
}

// apply folds a journal record into the in-memory view; the latest record
// for an id wins. Caller holds mu or has exclusive access.
func (c *Composer) apply(m Message) {
	i, ok := c.index[m.ID]
	if m.Status == StatusDeleted {
		if ok {
			c.messages = append(c.messages[:i:i], c.messages[i+1:]...)
			c.reindex()
		}
		return
	}
	if ok {
		c.messages[i] = m
		return
	}
	c.index[m.ID] = len(c.messages)
	c.messages = append(c.messages, m)
}

func (c *Composer) reindex() {
	clear(c.index)
	for i, m := range c.messages {
		c.index[m.ID] = i
	}
}

func (c *Composer) record(m Message) {
	c.mu.Lock()
	c.apply(m)
	c.mu.Unlock()

	if c.journal == nil {
		return
	}
	if err := c.journal.Append(m); err != nil {
		c.logger.Warn("message journal write failed", zap.String("message_id", string(m.ID)), zap.Error(err))
	}
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Composer) build(d Draft, status Status) Message {
	now := c.now().UTC()
	m := Message{
		ID:             types.NewMessageID(),
		Channel:        d.Channel,
		Subject:        d.Subject,
		Body:           d.Body,
		Sender:         d.Sender,
		RecipientIDs:   append([]string(nil), d.RecipientIDs...),
		RecipientCount: len(d.RecipientIDs),
		RecipientLabel: d.RecipientLabel,
		Status:         status,
		CreatedAt:      now,
	}
	if status == StatusDelivered {
		m.SentAt = &now
	}
	return m
}

// Send simulates delivery to every recipient.
func (c *Composer) Send(ctx context.Context, d Draft) (Message, error) {
	d.normalize()
	if err := d.validate(true); err != nil {
		return Message{}, err
	}
	if err := wait(ctx, c.cfg.SendDelay); err != nil {
		return Message{}, err
	}

	m := c.build(d, StatusDelivered)
	c.record(m)
	c.logger.Info("message sent",
		zap.String("message_id", string(m.ID)),
		zap.String("channel", string(m.Channel)),
		zap.Int("recipients", m.RecipientCount),
	)
	return m, nil
}

// SaveDraft stores the draft for later.
func (c *Composer) SaveDraft(ctx context.Context, d Draft) (Message, error) {
	d.normalize()
	if err := d.validate(false); err != nil {
		return Message{}, err
	}
	if err := wait(ctx, c.cfg.DraftDelay); err != nil {
		return Message{}, err
	}

	m := c.build(d, StatusDraft)
	c.record(m)
	c.logger.Info("draft saved", zap.String("message_id", string(m.ID)), zap.Int("recipients", m.RecipientCount))
	return m, nil
}

// Get returns a message or draft by id.
func (c *Composer) Get(id types.MessageID) (Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", types.ErrMessageNotFound, id)
	}
	return c.messages[i], nil
}

// SendDraft sends a saved draft; the draft becomes the sent message.
func (c *Composer) SendDraft(ctx context.Context, id types.MessageID) (Message, error) {
	m, err := c.Get(id)
	if err != nil {
		return Message{}, err
	}
	if m.Status != StatusDraft {
		return Message{}, fmt.Errorf("%w: %s is not a draft", types.ErrInvalidMessage, id)
	}

	d := Draft{Channel: m.Channel, Subject: m.Subject, Body: m.Body, Sender: m.Sender, RecipientIDs: m.RecipientIDs, RecipientLabel: m.RecipientLabel}
	if err := d.validate(true); err != nil {
		return Message{}, err
	}
	if err := wait(ctx, c.cfg.SendDelay); err != nil {
		return Message{}, err
	}

	now := c.now().UTC()
	m.Status = StatusDelivered
	m.SentAt = &now
	c.record(m)
	return m, nil
}

// DeleteDraft discards a saved draft.
func (c *Composer) DeleteDraft(id types.MessageID) error {
	m, err := c.Get(id)
	if err != nil {
		return err
	}
	if m.Status != StatusDraft {
		return fmt.Errorf("%w: %s is not a draft", types.ErrInvalidMessage, id)
	}
	m.Status = StatusDeleted
	c.record(m)
	return nil
}

// History returns sent messages, newest first.
func (c *Composer) History() []Message {
	return c.byStatus(StatusDelivered)
}

// Drafts returns saved drafts, newest first.
func (c *Composer) Drafts() []Message {
	return c.byStatus(StatusDraft)
}

func (c *Composer) byStatus(st Status) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Message
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Status == st {
			out = append(out, c.messages[i])
		}
	}
	return out
}

// Templates returns the pre-written bodies for a category.
func Templates(cat filter.Category) []string {
	return append([]string(nil), templates[cat]...)
}

// AllTemplates returns every category's templates.
func AllTemplates() map[filter.Category][]string {
	out := make(map[filter.Category][]string, len(templates))
	for k, v := range templates {
		out[k] = append([]string(nil), v...)
	}
	return out
}

var templates = map[filter.Category][]string{
	filter.CategoryInvoiceReminders: {
		"Your invoice #[Invoice Number] is now [Days] days past due. Please remit payment of $[Amount] by [Date] to avoid service interruption.",
		"This is a friendly reminder that your account has an outstanding balance of $[Amount]. Please contact us to arrange payment.",
		"Your account is currently past due. Please log in to your customer portal to make a payment or contact our billing department.",
	},
	filter.CategoryRouteChanges: {
		"Starting [Date], your service day will change from [Old Day] to [New Day]. Your first pickup on the new schedule will be [Date].",
		"Due to route optimization, we're adjusting your pickup schedule. Beginning [Date], your new service day will be [Day].",
		"We're updating our routes to serve you better. Starting [Date], please place your containers out on [Day] instead of [Old Day].",
	},
	filter.CategoryPriceChanges: {
		"Effective [Date], there will be a rate adjustment on your [Service Name]. Your new monthly rate will be $[New Amount].",
		"Due to increased operational costs, we will be implementing a [Percentage]% price adjustment effective [Date].",
		"Your [Service Name] rate will change from $[Old Amount] to $[New Amount] beginning with your next billing cycle on [Date].",
	},
	filter.CategoryOfficeNotes: {
		"We value your business and want to ensure you're getting the best service possible. Please contact us with any questions or concerns.",
		"Thank you for being a valued customer. We appreciate your business and look forward to continuing to serve you.",
		"We're committed to providing excellent service. If you have any feedback or suggestions, please let us know.",
	},
}
