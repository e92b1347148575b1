package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codemint.backend/internal/domain/entities"
	"codemint.backend/pkg/logger"
)

// FlowState is one stage of a transaction flow's lifecycle
type FlowState string

const (
	FlowIdle                FlowState = "IDLE"
	FlowValidating          FlowState = "VALIDATING"
	FlowUploading           FlowState = "UPLOADING"
	FlowSubmitting          FlowState = "SUBMITTING"
	FlowPendingConfirmation FlowState = "PENDING_CONFIRMATION"
	FlowConfirmed           FlowState = "CONFIRMED"
	FlowFailed              FlowState = "FAILED"
)

// Terminal reports whether the state admits no further transitions.
func (s FlowState) Terminal() bool {
	return s == FlowConfirmed || s == FlowFailed
}

// Flow tracks one transaction lifecycle from validation through
// confirmation. A flow fails at most once: whichever stage errors first
// settles it, and later errors on the same flow are swallowed. Abandoning
// a flow lets the underlying work run to completion but suppresses its
// user-visible continuation.
type Flow struct {
	ID      uuid.UUID
	Kind    string
	Created time.Time

	mu            sync.Mutex
	txHash        string
	state         FlowState
	abandoned     bool
	failure       error
	pendingNoteID string
	done          chan struct{}

	notifications *NotificationCenter
}

// State returns the flow's current lifecycle state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the failure that settled the flow, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

// Abandoned reports whether the user walked away from the flow.
func (f *Flow) Abandoned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.abandoned
}

// Done is closed when the flow settles in a terminal state.
func (f *Flow) Done() <-chan struct{} {
	return f.done
}

// advance moves the flow to a non-terminal state. Advancing a settled flow
// is a no-op so a slow worker cannot resurrect a failed flow.
func (f *Flow) advance(state FlowState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Terminal() {
		return
	}
	f.state = state
}

// TxHash returns the submitted transaction handle, empty before submission.
func (f *Flow) TxHash() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txHash
}

// setTxHash records the submitted transaction handle.
func (f *Flow) setTxHash(txHash string) {
	f.mu.Lock()
	f.txHash = txHash
	f.mu.Unlock()
}

// notifyPending replaces the flow's progress notification. Abandoned flows
// stay silent.
func (f *Flow) notifyPending(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.abandoned || f.state.Terminal() {
		return
	}
	f.pendingNoteID = f.notifications.Replace(f.pendingNoteID, entities.NotificationKindPending, message)
}

// fail settles the flow with err. Exactly one failure notification is
// emitted per flow, even when the user has abandoned it.
func (f *Flow) fail(err error) {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return
	}
	f.state = FlowFailed
	f.failure = err
	noteID := f.pendingNoteID
	f.pendingNoteID = ""
	f.mu.Unlock()

	flowsFailed.WithLabelValues(f.Kind).Inc()
	f.notifications.Replace(noteID, entities.NotificationKindError, err.Error())
	logger.Error(context.Background(), "flow failed",
		zap.String("flow_id", f.ID.String()),
		zap.String("kind", f.Kind),
		zap.Error(err))
	close(f.done)
}

// confirm settles the flow successfully. The success continuation runs only
// when the flow is still live; abandonment suppresses it but the terminal
// state is recorded either way.
func (f *Flow) confirm(message string, continuation func()) {
	f.mu.Lock()
	if f.state.Terminal() {
		f.mu.Unlock()
		return
	}
	f.state = FlowConfirmed
	abandoned := f.abandoned
	noteID := f.pendingNoteID
	f.pendingNoteID = ""
	f.mu.Unlock()

	flowsConfirmed.WithLabelValues(f.Kind).Inc()
	if abandoned {
		f.notifications.Dismiss(noteID)
		close(f.done)
		return
	}
	f.notifications.Replace(noteID, entities.NotificationKindInfo, message)
	if continuation != nil {
		continuation()
	}
	close(f.done)
}

// FlowManager registers live flows and answers status lookups.
type FlowManager struct {
	mu            sync.Mutex
	flows         map[uuid.UUID]*Flow
	notifications *NotificationCenter
}

// NewFlowManager creates a new flow manager
func NewFlowManager(notifications *NotificationCenter) *FlowManager {
	return &FlowManager{
		flows:         make(map[uuid.UUID]*Flow),
		notifications: notifications,
	}
}

// Start registers a new flow in the VALIDATING state.
func (m *FlowManager) Start(kind string) *Flow {
	f := &Flow{
		ID:            uuid.New(),
		Kind:          kind,
		Created:       time.Now(),
		state:         FlowValidating,
		done:          make(chan struct{}),
		notifications: m.notifications,
	}
	m.mu.Lock()
	m.flows[f.ID] = f
	m.mu.Unlock()
	flowsStarted.WithLabelValues(kind).Inc()
	return f
}

// Get returns a flow by id.
func (m *FlowManager) Get(id uuid.UUID) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[id]
	return f, ok
}

// Abandon marks a flow as walked-away-from. The in-flight work keeps
// running; only its user-visible continuation is suppressed.
func (m *FlowManager) Abandon(id uuid.UUID) bool {
	m.mu.Lock()
	f, ok := m.flows[id]
	m.mu.Unlock()
	if !ok {
		return false
	}

	f.mu.Lock()
	already := f.abandoned
	f.abandoned = true
	noteID := f.pendingNoteID
	f.pendingNoteID = ""
	f.mu.Unlock()

	if !already {
		flowsAbandoned.WithLabelValues(f.Kind).Inc()
		f.notifications.Dismiss(noteID)
	}
	return true
}
