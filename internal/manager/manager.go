// Package manager owns the in-memory stopwatch collection and is the only
// component that reads or writes it in the key-value store.
//
// The collection is loaded on first use and rewritten in full after every
// successful mutation. Storage failures never reach the caller of a
// collection operation: a failed read yields an empty collection and a failed
// write is logged. Lookups that find nothing and no-op transitions (start
// while running, stop while idle) come back as false.
//
// A Manager serializes its own operations. Two Managers pointed at the same
// store do not coordinate, and the last full write wins.
package manager

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hpungsan/tokime/internal/config"
	"github.com/hpungsan/tokime/internal/errors"
	"github.com/hpungsan/tokime/internal/kv"
	"github.com/hpungsan/tokime/internal/stopwatch"
)

// Manager mediates all persistence of stopwatches.
type Manager struct {
	mu           sync.Mutex
	store        kv.Store
	key          string
	logger       *slog.Logger
	now          func() time.Time
	defaultTitle string

	stopwatches []*stopwatch.Stopwatch
	loaded      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey sets the storage key. Defaults to "stopwatches".
func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock sets the time source handed to every stopwatch.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDefaultTitle sets the placeholder for untitled stopwatches.
func WithDefaultTitle(title string) Option {
	return func(m *Manager) {
		if title != "" {
			m.defaultTitle = title
		}
	}
}

// WithConfig applies the storage key and default title from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) {
		if cfg == nil {
			return
		}
		WithKey(cfg.StorageKey)(m)
		WithDefaultTitle(cfg.DefaultTitle)(m)
	}
}

// New creates a Manager over store. Nothing is read until the first operation.
func New(store kv.Store, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		key:          config.DefaultStorageKey,
		logger:       slog.Default(),
		now:          time.Now,
		defaultTitle: stopwatch.DefaultTitle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UpdateFields lists the stopwatch fields Update may change.
type UpdateFields struct {
	Title *string
}

// Key returns the storage key the collection lives under.
func (m *Manager) Key() string {
	return m.key
}

// LoadAll reads the collection from the store, replacing whatever is in memory.
func (m *Manager) LoadAll(ctx context.Context) []*stopwatch.Stopwatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadLocked(ctx)
	return slices.Clone(m.stopwatches)
}

// Reload is LoadAll without the result, for callers that changed the store
// underneath the manager.
func (m *Manager) Reload(ctx context.Context) {
	m.LoadAll(ctx)
}

// SaveAll writes the whole collection. The error is logged before it is returned.
func (m *Manager) SaveAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	return m.saveLocked(ctx)
}

// Add creates a stopwatch from rec, appends it and persists.
func (m *Manager) Add(ctx context.Context, rec stopwatch.Record) *stopwatch.Stopwatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s := stopwatch.New(rec, m.entityOptions()...)
	m.stopwatches = append(m.stopwatches, s)
	_ = m.saveLocked(ctx)
	return s
}

// Get returns the stopwatch with the given id.
func (m *Manager) Get(ctx context.Context, id string) (*stopwatch.Stopwatch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	return m.find(id)
}

// Delete removes the stopwatch with the given id. It persists and returns
// true only if something was removed.
func (m *Manager) Delete(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	before := len(m.stopwatches)
	m.stopwatches = slices.DeleteFunc(m.stopwatches, func(s *stopwatch.Stopwatch) bool {
		return s.ID() == id
	})
	if len(m.stopwatches) == before {
		return false
	}
	_ = m.saveLocked(ctx)
	return true
}

// Update applies fields to the stopwatch with the given id and persists.
func (m *Manager) Update(ctx context.Context, id string, fields UpdateFields) (*stopwatch.Stopwatch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return nil, false
	}
	if fields.Title != nil {
		s.SetTitle(*fields.Title)
	}
	_ = m.saveLocked(ctx)
	return s, true
}

// ListAll returns every stopwatch in insertion order. The slice is a copy;
// the stopwatches are the live entities, so reading them while other
// goroutines use the Manager needs View or ViewAll instead.
func (m *Manager) ListAll(ctx context.Context) []*stopwatch.Stopwatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	return slices.Clone(m.stopwatches)
}

// View runs fn on the stopwatch with the given id while the manager lock is
// held, so fn sees a state no concurrent operation is changing. fn must not
// call back into the Manager. View returns false if the id is unknown.
func (m *Manager) View(ctx context.Context, id string, fn func(*stopwatch.Stopwatch)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return false
	}
	fn(s)
	return true
}

// ViewAll runs fn on the whole collection, in insertion order, while the
// manager lock is held. fn must not retain the slice or call back into the Manager.
func (m *Manager) ViewAll(ctx context.Context, fn func([]*stopwatch.Stopwatch)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	fn(m.stopwatches)
}

// ListRunning returns the stopwatches that have an open session.
func (m *Manager) ListRunning(ctx context.Context) []*stopwatch.Stopwatch {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	running := make([]*stopwatch.Stopwatch, 0)
	for _, s := range m.stopwatches {
		if s.IsRunning() {
			running = append(running, s)
		}
	}
	return running
}

// Start opens a session on the stopwatch with the given id. It returns false
// without persisting if the id is unknown or the stopwatch is already running.
func (m *Manager) Start(ctx context.Context, id string) (stopwatch.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return stopwatch.Session{}, false
	}
	sess, ok := s.StartSession()
	if !ok {
		return stopwatch.Session{}, false
	}
	_ = m.saveLocked(ctx)
	return sess, true
}

// Stop closes the open session on the stopwatch with the given id. It returns
// false without persisting if the id is unknown or nothing is running.
func (m *Manager) Stop(ctx context.Context, id string) (stopwatch.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return stopwatch.Session{}, false
	}
	sess, ok := s.StopSession()
	if !ok {
		return stopwatch.Session{}, false
	}
	_ = m.saveLocked(ctx)
	return sess, true
}

// Toggle stops the stopwatch with the given id if it is running and starts it
// otherwise, in one step. started reports which happened; ok is false only
// for an unknown id.
func (m *Manager) Toggle(ctx context.Context, id string) (sess stopwatch.Session, started, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, found := m.find(id)
	if !found {
		return stopwatch.Session{}, false, false
	}
	if sess, stopped := s.StopSession(); stopped {
		_ = m.saveLocked(ctx)
		return sess, false, true
	}
	sess, _ = s.StartSession()
	_ = m.saveLocked(ctx)
	return sess, true, true
}

// AddSession appends a manually entered session and persists.
func (m *Manager) AddSession(ctx context.Context, id string, in stopwatch.ManualSession) (stopwatch.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return stopwatch.Session{}, errors.NewNotFound("stopwatch", id)
	}
	sess, err := s.AddManualSession(in)
	if err != nil {
		return stopwatch.Session{}, err
	}
	_ = m.saveLocked(ctx)
	return sess, nil
}

// UpdateSession edits a session in place and persists.
func (m *Manager) UpdateSession(ctx context.Context, id, sessionID string, u stopwatch.SessionUpdate) (stopwatch.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok {
		return stopwatch.Session{}, errors.NewNotFound("stopwatch", id)
	}
	sess, found, err := s.UpdateSession(sessionID, u)
	if !found {
		return stopwatch.Session{}, errors.NewNotFound("session", sessionID)
	}
	if err != nil {
		return stopwatch.Session{}, err
	}
	_ = m.saveLocked(ctx)
	return sess, nil
}

// DeleteSession removes a session and persists if it existed.
func (m *Manager) DeleteSession(ctx context.Context, id, sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureLoaded(ctx)
	s, ok := m.find(id)
	if !ok || !s.DeleteSession(sessionID) {
		return false
	}
	_ = m.saveLocked(ctx)
	return true
}

// Snapshot returns every key in the store, for backups.
// The in-memory collection is written first so the snapshot matches it.
func (m *Manager) Snapshot(ctx context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		if err := m.saveLocked(ctx); err != nil {
			return nil, err
		}
	}
	return m.store.Get(ctx, nil)
}

// ClearCollection removes only the stopwatch key from the store and empties
// the collection. Other keys are left alone.
func (m *Manager) ClearCollection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Remove(ctx, []string{m.key}); err != nil {
		m.logger.Error("failed to remove stopwatches", "key", m.key, "error", err)
		return err
	}
	m.stopwatches = nil
	m.loaded = true
	return nil
}

// Restore writes items into the store (overwriting matching keys) and reloads.
func (m *Manager) Restore(ctx context.Context, items map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(ctx, items); err != nil {
		m.logger.Error("failed to restore data", "keys", len(items), "error", err)
		return err
	}
	m.loadLocked(ctx)
	return nil
}

// Clear wipes the store and empties the collection.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear storage", "error", err)
		return err
	}
	m.stopwatches = nil
	m.loaded = true
	return nil
}

func (m *Manager) ensureLoaded(ctx context.Context) {
	if !m.loaded {
		m.loadLocked(ctx)
	}
}

func (m *Manager) loadLocked(ctx context.Context) {
	m.stopwatches = nil
	m.loaded = true

	data, err := m.store.Get(ctx, []string{m.key})
	if err != nil {
		m.logger.Error("failed to load stopwatches", "key", m.key, "error", err)
		return
	}

	raw, ok := data[m.key]
	if !ok || len(raw) == 0 {
		m.logger.Debug("no stored stopwatches", "key", m.key)
		return
	}

	var records []stopwatch.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		m.logger.Error("failed to decode stopwatches", "key", m.key, "error", err)
		return
	}

	opts := m.entityOptions()
	m.stopwatches = make([]*stopwatch.Stopwatch, 0, len(records))
	for _, rec := range records {
		m.stopwatches = append(m.stopwatches, stopwatch.New(rec, opts...))
	}
	m.logger.Debug("loaded stopwatches", "key", m.key, "count", len(m.stopwatches))
}

func (m *Manager) saveLocked(ctx context.Context) error {
	records := make([]stopwatch.Record, 0, len(m.stopwatches))
	for _, s := range m.stopwatches {
		records = append(records, s.Record())
	}

	data, err := json.Marshal(records)
	if err != nil {
		m.logger.Error("failed to encode stopwatches", "error", err)
		return errors.NewInternal(err)
	}

	if err := m.store.Set(ctx, map[string][]byte{m.key: data}); err != nil {
		m.logger.Error("failed to save stopwatches", "key", m.key, "count", len(records), "error", err)
		return err
	}
	m.logger.Debug("saved stopwatches", "key", m.key, "count", len(records))
	return nil
}

func (m *Manager) find(id string) (*stopwatch.Stopwatch, bool) {
	i := slices.IndexFunc(m.stopwatches, func(s *stopwatch.Stopwatch) bool {
		return s.ID() == id
	})
	if i < 0 {
		return nil, false
	}
	return m.stopwatches[i], true
}

func (m *Manager) entityOptions() []stopwatch.Option {
	return []stopwatch.Option{
		stopwatch.WithClock(m.now),
		stopwatch.WithDefaultTitle(m.defaultTitle),
	}
}
