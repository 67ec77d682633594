// Package operation tracks long running actuator operations, such as timed motor tests, and
// makes sure only one of a kind runs at a time.
package operation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"go.viam.com/kestrel/logging"
)

type opidKeyType string

const opidKey = opidKeyType("opid")

// Operation is an operation in progress.
type Operation struct {
	ID        uuid.UUID
	Method    string
	Arguments interface{}
	Started   time.Time

	myManager *Manager
	cancel    context.CancelFunc
	labels    []string
}

// Cancel cancel the context associated with an operation.
func (o *Operation) Cancel() {
	o.cancel()
}

// HasLabel returns true if this operation has a specific label.
func (o *Operation) HasLabel(label string) bool {
	o.myManager.lock.Lock()
	defer o.myManager.lock.Unlock()
	for _, l := range o.labels {
		if l == label {
			return true
		}
	}
	return false
}

// CancelOtherWithLabel will cancel all operations besides the one on ctx with this label, then
// label it. It does nothing if ctx carries no operation.
func CancelOtherWithLabel(ctx context.Context, label string) {
	o := Get(ctx)
	if o == nil {
		return
	}
	for _, op := range o.myManager.All() {
		if op == o {
			continue
		}
		if op.HasLabel(label) {
			op.Cancel()
		}
	}

	o.myManager.lock.Lock()
	o.labels = append(o.labels, label)
	o.myManager.lock.Unlock()
}

// Manager holds the running operations.
type Manager struct {
	ops    map[string]*Operation
	lock   sync.Mutex
	logger logging.Logger
	clock  clock.Clock
}

// NewManager creates a new manager for holding Operations. A nil clk uses the wall clock.
func NewManager(logger logging.Logger, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{ops: map[string]*Operation{}, logger: logger, clock: clk}
}

func (m *Manager) remove(id uuid.UUID) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.ops, id.String())
}

func (m *Manager) add(op *Operation) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.ops[op.ID.String()] = op
}

// All returns all running operations.
func (m *Manager) All() []*Operation {
	m.lock.Lock()
	defer m.lock.Unlock()
	a := make([]*Operation, 0, len(m.ops))
	for _, o := range m.ops {
		a = append(a, o)
	}
	return a
}

// Find finds an op by id, could return nil.
func (m *Manager) Find(id uuid.UUID) *Operation {
	return m.FindString(id.String())
}

// FindString finds an op by id, could return nil.
func (m *Manager) FindString(id string) *Operation {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.ops[id]
}

// Create puts an operation on this context.
func (m *Manager) Create(ctx context.Context, method string, args interface{}) (context.Context, func()) {
	if ctx.Value(opidKey) != nil {
		panic("operations cannot be nested")
	}

	op := &Operation{
		ID:        uuid.New(),
		Method:    method,
		Arguments: args,
		Started:   m.clock.Now(),
		myManager: m,
	}
	ctx = context.WithValue(ctx, opidKey, op)
	ctx, op.cancel = context.WithCancel(ctx)

	m.add(op)
	m.logger.Debugw("operation started", "id", op.ID, "method", method)

	return ctx, func() {
		op.cancel()
		m.remove(op.ID)
		m.logger.Debugw("operation done", "id", op.ID, "method", method,
			"elapsed", m.clock.Since(op.Started))
	}
}

// Get returns the current Operation. This can be nil.
func Get(ctx context.Context) *Operation {
	o := ctx.Value(opidKey)
	if o == nil {
		return nil
	}
	return o.(*Operation)
}
