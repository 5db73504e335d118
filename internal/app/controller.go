package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studiowebux/restdeck/internal/executor"
	"github.com/studiowebux/restdeck/internal/registry"
	"github.com/studiowebux/restdeck/internal/types"
	"go.uber.org/zap"
)

// Fetcher retrieves the records of one collection
type Fetcher interface {
	Fetch(ctx context.Context, collection types.Collection) (*types.FetchResult, error)
}

// Recorder receives one entry per completed fetch
type Recorder interface {
	Save(entry types.HistoryEntry) error
}

// RequestState is the loading/error status of the current fetch cycle
type RequestState struct {
	Loading bool
	Error   string
}

// Ticket identifies one fetch cycle
type Ticket struct {
	Key        string
	Generation uint64
}

// Outcome reports what Load did with a fetch result
type Outcome struct {
	Ticket    Ticket
	Applied   bool // result reconciled into the store or request state
	Discarded bool // navigation moved on before the result arrived
	Result    *types.FetchResult
	Err       error // underlying fetch error, for logs and the error detail view
}

// Snapshot is a consistent copy of everything the view needs
type Snapshot struct {
	Collections []types.Collection
	Active      types.Collection
	Records     []types.Record
	Request     RequestState
	Form        FormState
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder logs each fetch attempt to r
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithClock replaces the time source used for new record ids
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.ids.now = now
	}
}

// WithSessionID overrides the generated session id stamped on history entries
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// Controller owns navigation, request, form and store state.
// Load runs on a fetch goroutine, so all state is guarded by mu.
type Controller struct {
	registry  *registry.Registry
	fetcher   Fetcher
	recorder  Recorder
	logger    *zap.Logger
	sessionID string

	mu         sync.RWMutex
	active     string
	generation uint64
	request    RequestState
	form       FormState
	stores     map[string][]types.Record
	ids        idSource
}

// New creates a controller with the first registered collection active.
// No fetch is started until SelectCollection or Reload is called.
func New(reg *registry.Registry, fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		registry:  reg,
		fetcher:   fetcher,
		logger:    zap.NewNop(),
		sessionID: uuid.NewString(),
		active:    reg.First(),
		stores:    make(map[string][]types.Record),
		ids:       idSource{now: time.Now},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the id stamped on this run's history entries
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Registry returns the collection registry
func (c *Controller) Registry() *registry.Registry {
	return c.registry
}

// SelectCollection makes key active, closes any form and starts a fetch cycle.
// Selecting the already active key starts a new cycle as well.
func (c *Controller) SelectCollection(key string) (Ticket, error) {
	if !c.registry.Has(key) {
		return Ticket{}, fmt.Errorf("%w: %q", ErrInvalidCollection, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = key
	c.form = FormState{}
	return c.beginLocked(), nil
}

// Reload starts a new fetch cycle for the active collection
func (c *Controller) Reload() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

func (c *Controller) beginLocked() Ticket {
	c.generation++
	c.request = RequestState{Loading: true}
	t := Ticket{Key: c.active, Generation: c.generation}
	c.logger.Debug("fetch cycle started",
		zap.String("collection", t.Key),
		zap.Uint64("generation", t.Generation))
	return t
}

func (c *Controller) currentLocked(t Ticket) bool {
	return t.Generation == c.generation && t.Key == c.active
}

// Load performs the fetch for ticket and reconciles the result.
// A ticket superseded by later navigation is discarded entirely.
func (c *Controller) Load(ctx context.Context, t Ticket) Outcome {
	collection, err := c.registry.Lookup(t.Key)
	if err != nil {
		return Outcome{Ticket: t, Discarded: true, Err: fmt.Errorf("%w: %q", ErrInvalidCollection, t.Key)}
	}

	c.mu.RLock()
	stale := !c.currentLocked(t)
	c.mu.RUnlock()
	if stale {
		c.logger.Debug("fetch skipped for superseded cycle",
			zap.String("collection", t.Key),
			zap.Uint64("generation", t.Generation))
		return Outcome{Ticket: t, Discarded: true}
	}

	started := time.Now()
	result, err := c.fetcher.Fetch(ctx, collection)
	var records []types.Record
	if err == nil {
		records, err = normalizeRecords(result.Records)
	}

	out := Outcome{Ticket: t, Result: result, Err: err}

	c.mu.Lock()
	if !c.currentLocked(t) {
		out.Discarded = true
	} else {
		out.Applied = true
		if err != nil {
			c.request = RequestState{Error: FetchFailedMessage}
		} else {
			c.stores[t.Key] = records
			c.request = RequestState{}
		}
	}
	c.mu.Unlock()

	c.logOutcome(out, time.Since(started))
	c.record(collection, out, started)
	return out
}

func (c *Controller) logOutcome(out Outcome, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("collection", out.Ticket.Key),
		zap.Uint64("generation", out.Ticket.Generation),
		zap.Duration("elapsed", elapsed),
	}
	switch {
	case out.Discarded:
		c.logger.Info("fetch result discarded", append(fields, zap.Error(out.Err))...)
	case out.Err != nil:
		c.logger.Warn("fetch failed", append(fields, zap.Error(out.Err))...)
	default:
		c.logger.Info("fetch applied", append(fields, zap.Int("records", len(out.Result.Records)))...)
	}
}

func (c *Controller) record(collection types.Collection, out Outcome, started time.Time) {
	if c.recorder == nil {
		return
	}

	entry := types.HistoryEntry{
		SessionID:  c.sessionID,
		Timestamp:  started,
		Collection: collection.Key,
		URL:        collection.URL,
		Duration:   time.Since(started).Milliseconds(),
		Discarded:  out.Discarded,
	}
	if out.Result != nil {
		entry.Status = out.Result.Status
		entry.Duration = out.Result.Duration
		entry.RecordCount = len(out.Result.Records)
		entry.Size = out.Result.ResponseSize
	}
	if out.Err != nil {
		entry.Error = out.Err.Error()
		var fe *executor.FetchError
		if errors.As(out.Err, &fe) {
			entry.Status = fe.Status
		}
	}

	if err := c.recorder.Save(entry); err != nil {
		c.logger.Warn("failed to save history entry", zap.Error(err))
	}
}

// normalizeRecords checks every record has a unique id and stores ids as int64
func normalizeRecords(in []types.Record) ([]types.Record, error) {
	out := make([]types.Record, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for i, r := range in {
		id, ok := r.ID()
		if !ok {
			return nil, fmt.Errorf("record %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %d", i, id)
		}
		seen[id] = struct{}{}
		rec := r.Clone()
		rec[types.IDField] = id
		out = append(out, rec)
	}
	return out, nil
}

// StartAdd opens an empty add form
func (c *Controller) StartAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{Mode: FormAdd, Pending: types.Record{}}
}

// StartEdit opens the form on a copy of record
func (c *Controller) StartEdit(record types.Record) error {
	id, ok := record.ID()
	if !ok {
		return ErrMissingID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{Mode: FormEdit, TargetID: id, Pending: record.Clone()}
	return nil
}

// UpdateField merges one value into the pending form values.
// Nothing is validated until Submit.
func (c *Controller) UpdateField(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Pending == nil {
		c.form.Pending = types.Record{}
	}
	c.form.Pending[name] = value
}

// CancelForm closes the form without touching any store
func (c *Controller) CancelForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{}
}

// Submit applies the open form to the active store.
// Missing required fields leave the form open and return a *ValidationError.
// An edit whose target vanished is dropped silently.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.form.Active() {
		return ErrNoActiveForm
	}

	collection, err := c.registry.Lookup(c.active)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, c.active)
	}

	if verr := missingRequired(collection, c.form.Pending); verr != nil {
		c.logger.Debug("submit rejected",
			zap.String("collection", collection.Key),
			zap.Strings("missing", verr.Fields))
		return verr
	}

	store := c.stores[c.active]
	switch c.form.Mode {
	case FormEdit:
		idx := indexOf(store, c.form.TargetID)
		if idx < 0 {
			c.logger.Info("edit target no longer exists",
				zap.String("collection", collection.Key),
				zap.Int64("id", c.form.TargetID))
			break
		}
		updated := append([]types.Record(nil), store...)
		updated[idx] = merge(store[idx], c.form.Pending)
		c.stores[c.active] = updated

	case FormAdd:
		rec := merge(nil, c.form.Pending)
		rec[types.IDField] = c.ids.next(store)
		updated := make([]types.Record, 0, len(store)+1)
		updated = append(updated, rec)
		c.stores[c.active] = append(updated, store...)
	}

	c.form = FormState{}
	return nil
}

func indexOf(store []types.Record, id int64) int {
	for i, r := range store {
		if rid, ok := r.ID(); ok && rid == id {
			return i
		}
	}
	return -1
}

// Active returns the active collection
func (c *Controller) Active() types.Collection {
	c.mu.RLock()
	key := c.active
	c.mu.RUnlock()
	collection, _ := c.registry.Lookup(key)
	return collection
}

// Records returns a copy of the store for key
func (c *Controller) Records(key string) []types.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.stores[key])
}

// Form returns a copy of the form state
func (c *Controller) Form() FormState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form.clone()
}

// Request returns the request state of the current cycle
func (c *Controller) Request() RequestState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.request
}

// Snapshot returns a consistent copy of the state for rendering
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active, _ := c.registry.Lookup(c.active)
	return Snapshot{
		Collections: c.registry.All(),
		Active:      active,
		Records:     cloneRecords(c.stores[c.active]),
		Request:     c.request,
		Form:        c.form.clone(),
	}
}

func cloneRecords(in []types.Record) []types.Record {
	if in == nil {
		return nil
	}
	out := make([]types.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
