package autosave

import (
	"context"
	"sync"
	"time"

	"portal-cms/cache"
	"portal-cms/models"
)

// DefaultDebounce is the quiet period before an observed buffer is saved.
const DefaultDebounce = 60 * time.Second

// DraftSaver commits a buffer on the server. Client is the HTTP implementation.
type DraftSaver interface {
	SaveDraft(ctx context.Context, req models.AutosaveRequest) (models.AutosaveResult, error)
}

// Notification reports the outcome of one save attempt. It is meant to be
// shown as a dismissible message and never interrupts editing.
type Notification struct {
	DraftKey  string
	Saved     bool
	ContentID *uint
	Message   string
	At        time.Time
}

type Option func(*Autosaver)

func WithDebounce(d time.Duration) Option {
	return func(a *Autosaver) {
		if d > 0 {
			a.debounce = d
		}
	}
}

func WithNotifier(fn func(Notification)) Option {
	return func(a *Autosaver) {
		if fn != nil {
			a.notify = fn
		}
	}
}

// WithTimeout bounds each save attempt started by the debounce timer.
func WithTimeout(d time.Duration) Option {
	return func(a *Autosaver) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// Autosaver debounces an edit buffer. When it fires it writes the buffer to
// the local draft store first and then asks the DraftSaver to commit it.
type Autosaver struct {
	draftKey string
	saver    DraftSaver
	local    cache.DraftCache
	debounce time.Duration
	timeout  time.Duration
	notify   func(Notification)

	mu        sync.Mutex
	pending   *models.AutosaveRequest
	timer     *time.Timer
	contentID *uint
	closed    bool

	// saveMu keeps attempts in observation order.
	saveMu sync.Mutex
}

func New(draftKey string, saver DraftSaver, local cache.DraftCache, opts ...Option) *Autosaver {
	a := &Autosaver{
		draftKey: draftKey,
		saver:    saver,
		local:    local,
		debounce: DefaultDebounce,
		timeout:  30 * time.Second,
		notify:   func(Notification) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Observe records the latest buffer and restarts the quiet period.
func (a *Autosaver) Observe(buffer models.AutosaveRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	buffer.DraftKey = a.draftKey
	a.pending = &buffer

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *Autosaver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	a.flush(ctx)
}

// SaveNow saves the pending buffer without waiting for the quiet period.
// It returns once the attempt has finished; the outcome goes to the notifier.
func (a *Autosaver) SaveNow(ctx context.Context) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	a.flush(ctx)
}

func (a *Autosaver) flush(ctx context.Context) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	req := a.pending
	a.pending = nil
	if req != nil && req.ContentID == nil {
		req.ContentID = a.contentID
	}
	a.mu.Unlock()

	if req == nil {
		return
	}
	if req.SavedAt.IsZero() {
		req.SavedAt = time.Now().UTC()
	}

	draft := &cache.Draft{Request: *req, ContentID: req.ContentID, UpdatedAt: time.Now().UTC()}
	localErr := a.local.Put(ctx, a.draftKey, draft)

	result, err := a.saver.SaveDraft(ctx, *req)
	if err != nil || !result.Saved {
		a.retryLater(req)

		message := result.Notice
		if err != nil {
			message = "Autosave failed, your changes are kept on this device"
		}
		if localErr != nil {
			message = "Autosave failed and the local copy could not be written"
		}
		a.notify(Notification{DraftKey: a.draftKey, ContentID: req.ContentID, Message: message, At: time.Now()})
		return
	}

	a.mu.Lock()
	if result.ContentID != nil {
		a.contentID = result.ContentID
	}
	a.mu.Unlock()

	draft.ContentID = result.ContentID
	draft.Committed = true
	_ = a.local.Put(ctx, a.draftKey, draft)

	a.notify(Notification{DraftKey: a.draftKey, Saved: true, ContentID: result.ContentID, Message: "Draft saved", At: time.Now()})
}

// retryLater puts a failed buffer back unless a newer one arrived meanwhile.
func (a *Autosaver) retryLater(req *models.AutosaveRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil && !a.closed {
		a.pending = req
	}
}

// LoadDraft returns the local copy, or cache.ErrDraftNotFound.
func (a *Autosaver) LoadDraft(ctx context.Context) (*cache.Draft, error) {
	return a.local.Get(ctx, a.draftKey)
}

// ClearDraft drops the pending buffer and the local copy, typically right
// after an explicit publish.
func (a *Autosaver) ClearDraft(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
	a.mu.Unlock()

	return a.local.Delete(ctx, a.draftKey)
}

// ContentID is the id of the item the drafts are committed to, once known.
func (a *Autosaver) ContentID() *uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.contentID
}

// Close stops the timer. Pending changes are not saved; call SaveNow first
// to keep them.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
