package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventKind labels a simulation event worth announcing outside the engine.
type EventKind string

const (
	EventMoleculeStabilized EventKind = "molecule_stabilized"
	EventReshapeStarted     EventKind = "reshape_started"
	EventReshapeCompleted   EventKind = "reshape_completed"
	EventDecayRelease       EventKind = "decay_release"
	EventPolymerFormed      EventKind = "polymer_formed"
	EventPolymersChained    EventKind = "polymers_chained"
	EventIntentionFulfilled EventKind = "intention_fulfilled"
)

// Event is the notification payload delivered to registered notifiers.
// Only the fields relevant to the event kind are populated.
type Event struct {
	WorldID   WorldID   `json:"world_id"`
	Kind      EventKind `json:"kind"`
	Tick      int64     `json:"tick"`
	Timestamp int64     `json:"timestamp"`

	MoleculeID  MoleculeID  `json:"molecule_id,omitempty"`
	AtomID      AtomID      `json:"atom_id,omitempty"`
	PolymerID   PolymerID   `json:"polymer_id,omitempty"`
	PartnerID   PolymerID   `json:"partner_id,omitempty"`
	IntentionID IntentionID `json:"intention_id,omitempty"`

	Formula     string `json:"formula,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Chain       int    `json:"chain,omitempty"`
}

// JSON returns the event as JSON bytes.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the interface every notification channel implements.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the kind of notifier (e.g. "webhook", "websocket").
	Type() string

	// Notify delivers one event. The context carries cancellation/timeout.
	Notify(ctx context.Context, event Event) error

	// Close releases any resources held by the notifier.
	Close() error
}

type notificationJob struct {
	Event       Event
	NotifierIDs []string
}

// NotificationManager owns the registered notifiers and dispatches events to
// them asynchronously, with retry and exponential backoff per delivery.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	log       Logger
}

// NewNotificationManager creates a manager with a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a manager using the given logger.
func NewNotificationManagerWithLogger(log Logger) *NotificationManager {
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		log:       log,
	}
	mgr.startWorkers(1)
	return mgr
}

// RegisterNotifier adds a notifier. IDs must be unique.
func (nm *NotificationManager) RegisterNotifier(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = n
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	n, exists := nm.notifiers[id]
	nm.mu.Unlock()
	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}
	nm.mu.Lock()
	delete(nm.notifiers, id)
	nm.mu.Unlock()
	return nil
}

// GetNotifier retrieves a notifier by id.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	n, ok := nm.notifiers[id]
	return n, ok
}

// ListNotifiers returns the ids of all registered notifiers.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue schedules an event for async delivery. Non-blocking: when the
// queue is full the event is dropped and logged.
func (nm *NotificationManager) Enqueue(event Event, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}
	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()
	if closed {
		return
	}
	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	default:
		nm.log.Warnf("notification queue full, dropping event kind=%s", event.Kind)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for range n {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event Event) {
	nm.mu.RLock()
	n, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()
	if !ok {
		nm.log.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.log.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			nm.log.Errorf("notification failed after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify delivers an event synchronously to the given notifiers. Kept for
// callers that need completion before proceeding; ticking code uses Enqueue.
func (nm *NotificationManager) Notify(ctx context.Context, event Event, notifierIDs []string) error {
	if len(notifierIDs) == 0 {
		return nil
	}
	var errs []error
	for _, id := range notifierIDs {
		nm.mu.RLock()
		n, ok := nm.notifiers[id]
		nm.mu.RUnlock()
		if !ok {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}
	return nil
}

// Close shuts down the workers and closes every registered notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, n := range nm.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}
	return nil
}
