package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Syncer keeps the server's pending cart in step with a CartStore. Saves are
// debounced: each mutation restarts the quiescence timer, and only the state
// at expiry is pushed. At most one save is in flight at a time; a mutation
// arriving mid-save marks the syncer dirty and a fresh snapshot is pushed when
// the in-flight save completes, so a stale payload can never land after a
// newer one. Transient save failures retry with exponential backoff; after
// the last attempt the failure is logged and the next successful save
// reconciles state.
type Syncer struct {
	c     *Client
	store *CartStore
	log   *zap.Logger

	debounce    time.Duration
	saveTimeout time.Duration
	maxRetries  int
	backoff     time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	inflight bool
	dirty    bool
	closed   bool
}

// NewSyncer wires a syncer to the store's change notifications. The store
// should belong to exactly one syncer.
func (c *Client) NewSyncer(store *CartStore) *Syncer {
	s := &Syncer{
		c:           c,
		store:       store,
		log:         c.log,
		debounce:    c.debounce,
		saveTimeout: 5 * time.Second,
		maxRetries:  3,
		backoff:     200 * time.Millisecond,
	}
	store.setOnChange(s.schedule)
	return s
}

// Load fetches the server's pending cart and replaces local state with it.
// A missing record means an empty cart, not an error. An authorization
// failure invalidates the session and is returned so the caller can force
// re-authentication. Other failures leave the local cart empty.
func (s *Syncer) Load(ctx context.Context) error {
	sess := s.c.Session()
	if !sess.Valid() {
		return fmt.Errorf("%w: no active session", ErrUnauthorized)
	}

	items, err := s.c.getCart(ctx, sess.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		s.store.ReplaceAll(nil)
		return nil
	case err != nil:
		return err
	}
	s.store.ReplaceAll(items)
	return nil
}

// schedule is the store's change callback: cancel-and-reschedule, single shot.
func (s *Syncer) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flush)
}

func (s *Syncer) flush() {
	s.mu.Lock()
	s.timer = nil
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.inflight {
		// A save is already running; push a fresh snapshot once it returns.
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.inflight = true
	items := s.store.Items()
	s.mu.Unlock()

	go s.save(items)
}

func (s *Syncer) save(items []CartItem) {
	sess := s.c.Session()
	if !sess.Valid() {
		s.finish()
		return
	}

	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoff << (attempt - 1))
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		err = s.c.saveCart(ctx, sess.UserID, items)
		cancel()
		if err == nil {
			break
		}
		// Only transient failures are worth retrying.
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrValidation) {
			break
		}
	}
	if err != nil {
		s.log.Warn("cart save failed", zap.Error(err))
	}
	s.finish()
}

func (s *Syncer) finish() {
	s.mu.Lock()
	s.inflight = false
	redo := s.dirty && !s.closed
	s.dirty = false
	s.mu.Unlock()

	if redo {
		s.flush()
	}
}

// Flush bypasses the debounce window and pushes the current cart state
// immediately. If a save is already in flight the push happens after it
// returns, so the state at call time is always the pending record's last
// write. Checkout relies on this to stop a save snapshotted before the order
// from resurrecting the emptied cart.
func (s *Syncer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

// Close cancels pending work and detaches the syncer permanently.
func (s *Syncer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.dirty = false
}

// Synced reports whether no save is scheduled or running. Useful for tests
// and for gating teardown.
func (s *Syncer) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer == nil && !s.inflight && !s.dirty
}
