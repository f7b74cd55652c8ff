// Package txn implements the transaction coordinator.
package txn

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// State is one of the three transaction lifecycle states.
type State int

const (
	Active State = iota
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Isolation is one of the four SQL isolation levels recognised at parse time.
// Enforcement is delegated to storage; the coordinator only records the
// requested level.
type Isolation int

const (
	ReadUncommitted Isolation = iota
	ReadCommitted
	RepeatableRead
	Serializable
)

// Access is the READ ONLY / READ WRITE access mode.
type Access int

const (
	ReadWrite Access = iota
	ReadOnly
)

// UndoOp is one entry in a transaction's undo log; Undo replays the
// inverse of whatever forward operation was logged.
type UndoOp struct {
	Description string
	Undo        func() error
}

// Transaction is the coordinator's bookkeeping record for one BEGIN..
// COMMIT/ROLLBACK window.
type Transaction struct {
	ID        string
	SessionID string
	Isolation Isolation
	Access    Access
	State     State

	mu  sync.Mutex
	log []UndoOp
}

var (
	ErrUnknownTransaction = goerrors.NewKind("unknown transaction %q")
	ErrNotActive          = goerrors.NewKind("transaction %q is not active")
)

// Coordinator owns the id -> Transaction mapping and the per-session current-
// transaction pointer.
type Coordinator struct {
	mu           sync.Mutex
	transactions map[string]*Transaction
	bySession    map[string]string
	log          *logrus.Entry
}

func NewCoordinator(log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Coordinator{
		transactions: make(map[string]*Transaction),
		bySession:    make(map[string]string),
		log:          log,
	}
}

// Begin allocates a new transaction id and registers it as the session's
// current transaction.
func (c *Coordinator) Begin(sessionID string, isolation Isolation, access Access) *Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &Transaction{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Isolation: isolation,
		Access:    access,
		State:     Active,
	}
	c.transactions[t.ID] = t
	if sessionID != "" {
		c.bySession[sessionID] = t.ID
	}
	c.log.WithField("txn_id", t.ID).Debug("transaction started")
	return t
}

func (c *Coordinator) get(id string) (*Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.transactions[id]
	if !ok {
		return nil, ErrUnknownTransaction.New(id)
	}
	return t, nil
}

// CurrentForSession returns the session's open transaction, if any.
func (c *Coordinator) CurrentForSession(sessionID string) (*Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.bySession[sessionID]
	if !ok {
		return nil, false
	}
	t := c.transactions[id]
	return t, t != nil && t.State == Active
}

// LogOperation appends an undo entry to the current transaction's log, or is a
// no-op if txnID is empty.
func (c *Coordinator) LogOperation(txnID string, op UndoOp) error {
	if txnID == "" {
		return nil
	}
	t, err := c.get(txnID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != Active {
		return nil
	}
	t.log = append(t.log, op)
	return nil
}

// Commit finalises the transaction's log without replaying it.
func (c *Coordinator) Commit(txnID string) error {
	t, err := c.get(txnID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != Active {
		return ErrNotActive.New(txnID)
	}
	t.State = Committed
	c.log.WithField("txn_id", txnID).Debug("transaction committed")
	c.forget(txnID)
	return nil
}

// Rollback replays the undo log in reverse order, then marks the
// transaction rolled back.
func (c *Coordinator) Rollback(txnID string) error {
	t, err := c.get(txnID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != Active {
		return ErrNotActive.New(txnID)
	}

	for i := len(t.log) - 1; i >= 0; i-- {
		if uerr := t.log[i].Undo(); uerr != nil {
			c.log.WithError(uerr).WithField("txn_id", txnID).Warn("undo operation failed during rollback")
		}
	}
	t.State = RolledBack
	c.log.WithField("txn_id", txnID).Debug("transaction rolled back")
	c.forget(txnID)
	return nil
}

func (c *Coordinator) forget(txnID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.transactions[txnID]; ok {
		if c.bySession[t.SessionID] == txnID {
			delete(c.bySession, t.SessionID)
		}
	}
}

// GetSessionTransactions lists all transaction ids ever opened for a session
// still tracked by the coordinator.
func (c *Coordinator) GetSessionTransactions(sessionID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for id, t := range c.transactions {
		if t.SessionID == sessionID {
			out = append(out, id)
		}
	}
	return out
}
