package prompts

import (
	"context"
	"sort"
	"sync"
	"time"

	"investigation-canvas/application/ports"
	"investigation-canvas/domain/core/entities"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxNotices is how many notices are kept per investigation
const DefaultMaxNotices = 50

// Kind says which answer a pending prompt expects
type Kind string

const (
	KindEdit    Kind = "edit"
	KindConfirm Kind = "confirm"
)

// Pending is a question waiting for a user's answer
type Pending struct {
	ID              string           `json:"id"`
	InvestigationID string           `json:"investigationId"`
	Kind            Kind             `json:"kind"`
	Prompt          ports.PromptKind `json:"prompt,omitempty"`
	NodeID          string           `json:"nodeId,omitempty"`
	Message         string           `json:"message,omitempty"`
	Fields          *entities.Fields `json:"fields,omitempty"`
	Created         bool             `json:"created,omitempty"`
	OpenedAt        time.Time        `json:"openedAt"`
}

// Answer resolves a pending prompt. Confirm is read for confirm prompts;
// Cancel and Update are read for edit prompts.
type Answer struct {
	Confirm bool                 `json:"confirm"`
	Cancel  bool                 `json:"cancel"`
	Update  entities.FieldUpdate `json:"update"`
}

// Notice is a notice as shown to the user
type Notice struct {
	Level   ports.NoticeLevel `json:"level"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	At      time.Time         `json:"at"`
}

type entry struct {
	seq     uint64
	pending Pending
	reply   chan Answer
}

// Broker parks edit and confirm requests until a client answers them,
// and keeps the latest notices per investigation.
type Broker struct {
	timeout    time.Duration
	maxNotices int
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	seq     uint64
	pending map[string]*entry
	notices map[string][]Notice
	changed chan struct{}
}

var (
	_ ports.EditSession = (*Broker)(nil)
	_ ports.Confirmer   = (*Broker)(nil)
	_ ports.Notifier    = (*Broker)(nil)
)

// NewBroker creates a broker. A positive timeout expires unanswered prompts:
// an expired edit counts as canceled and an expired confirmation as declined.
func NewBroker(timeout time.Duration, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		timeout:    timeout,
		maxNotices: DefaultMaxNotices,
		logger:     logger,
		now:        time.Now,
		pending:    make(map[string]*entry),
		notices:    make(map[string][]Notice),
		changed:    make(chan struct{}),
	}
}

// RequestEdit implements ports.EditSession
func (b *Broker) RequestEdit(ctx context.Context, req ports.EditRequest) (entities.FieldUpdate, error) {
	fields := req.Fields
	answer, expired, err := b.open(ctx, Pending{
		InvestigationID: req.InvestigationID,
		Kind:            KindEdit,
		NodeID:          req.NodeID.String(),
		Fields:          &fields,
		Created:         req.Created,
	})
	if err != nil {
		return entities.FieldUpdate{}, err
	}
	if expired || answer.Cancel {
		return entities.FieldUpdate{}, ports.ErrEditCanceled
	}
	return answer.Update, nil
}

// Confirm implements ports.Confirmer
func (b *Broker) Confirm(ctx context.Context, prompt ports.Prompt) (bool, error) {
	p := Pending{
		InvestigationID: prompt.InvestigationID,
		Kind:            KindConfirm,
		Prompt:          prompt.Kind,
		Message:         prompt.Message,
	}
	if !prompt.NodeID.IsZero() {
		p.NodeID = prompt.NodeID.String()
	}
	answer, expired, err := b.open(ctx, p)
	if err != nil || expired {
		return false, err
	}
	return answer.Confirm, nil
}

// Notify implements ports.Notifier
func (b *Broker) Notify(_ context.Context, notice ports.Notice) {
	n := Notice{
		Level:   notice.Level,
		Message: notice.Message,
		At:      b.now(),
	}
	if notice.Err != nil {
		n.Error = notice.Err.Error()
	}

	b.mu.Lock()
	list := append(b.notices[notice.InvestigationID], n)
	if len(list) > b.maxNotices {
		list = list[len(list)-b.maxNotices:]
	}
	b.notices[notice.InvestigationID] = list
	b.mu.Unlock()

	fields := []zap.Field{
		zap.String("investigationID", notice.InvestigationID),
		zap.String("message", notice.Message),
	}
	if notice.Level == ports.NoticeError {
		b.logger.Warn("Notice", append(fields, zap.Error(notice.Err))...)
		return
	}
	b.logger.Debug("Notice", fields...)
}

// Pending lists the open prompts of an investigation, oldest first
func (b *Broker) Pending(investigationID string) []Pending {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingLocked(investigationID)
}

// Wait blocks until the investigation has an open prompt and returns the oldest
func (b *Broker) Wait(ctx context.Context, investigationID string) (Pending, error) {
	for {
		b.mu.Lock()
		list := b.pendingLocked(investigationID)
		changed := b.changed
		b.mu.Unlock()

		if len(list) > 0 {
			return list[0], nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return Pending{}, ctx.Err()
		}
	}
}

// Resolve answers a pending prompt
func (b *Broker) Resolve(id string, answer Answer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.pending[id]
	if !ok {
		return appErrors.NewNotFoundError("prompt")
	}
	if e.pending.Kind == KindEdit && !answer.Cancel {
		if err := utils.ValidateStruct(answer.Update); err != nil {
			return appErrors.NewValidationError(err.Error())
		}
	}
	delete(b.pending, id)
	e.reply <- answer
	return nil
}

// Notices returns the kept notices of an investigation, oldest first
func (b *Broker) Notices(investigationID string) []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice(nil), b.notices[investigationID]...)
}

// ClearNotices drops the kept notices of an investigation
func (b *Broker) ClearNotices(investigationID string) {
	b.mu.Lock()
	delete(b.notices, investigationID)
	b.mu.Unlock()
}

// open parks p until it is resolved, ctx is done or the timeout fires
func (b *Broker) open(ctx context.Context, p Pending) (answer Answer, expired bool, err error) {
	p.ID = uuid.NewString()
	p.OpenedAt = b.now()
	e := &entry{pending: p, reply: make(chan Answer, 1)}

	b.mu.Lock()
	b.seq++
	e.seq = b.seq
	b.pending[p.ID] = e
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, p.ID)
		b.mu.Unlock()
	}()

	var timeout <-chan time.Time
	if b.timeout > 0 {
		timer := time.NewTimer(b.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case answer = <-e.reply:
		return answer, false, nil
	case <-timeout:
		b.logger.Info("Prompt expired",
			zap.String("investigationID", p.InvestigationID),
			zap.String("kind", string(p.Kind)),
		)
		return Answer{}, true, nil
	case <-ctx.Done():
		return Answer{}, false, ctx.Err()
	}
}

func (b *Broker) pendingLocked(investigationID string) []Pending {
	entries := make([]*entry, 0)
	for _, e := range b.pending {
		if e.pending.InvestigationID == investigationID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	list := make([]Pending, len(entries))
	for i, e := range entries {
		list[i] = e.pending
	}
	return list
}
