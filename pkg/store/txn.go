package store

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/fcrepo-go/lsup/pkg/apierr"
)

// Txn is a single logical transaction spanning both the data and index
// environments. Write transactions are serialized by Environment's
// writeMu so at most one is active at a time; read transactions are
// lock-free MVCC snapshots and never block, or are blocked by, a
// writer (§5).
//
// A Txn (and any Cursor obtained from it) must not be used after
// Commit or Abort; both invalidate it, matching the bbolt transactions
// it wraps.
type Txn struct {
	env   *Environment
	write bool

	dataTx  *bolt.Tx
	indexTx *bolt.Tx

	done     bool
	heldSlot bool
}

// Begin opens a new transaction. Only one writable Txn may be open at
// a time per Environment (enforced by an internal mutex so callers
// never need their own locking); any number of read-only Txns may be
// open concurrently alongside it, up to Options.MaxSpareTxns (§6.4,
// "workers") if one was configured.
func (e *Environment) Begin(writable bool) (*Txn, error) {
	if writable {
		e.writeMu.Lock()
	}

	heldSlot := false
	if !writable && e.readerSlots != nil {
		select {
		case e.readerSlots <- struct{}{}:
			heldSlot = true
		default:
			return nil, &apierr.ReaderSlotExhausted{}
		}
	}

	dataTx, err := e.dataDB.Begin(writable)
	if err != nil {
		if writable {
			e.writeMu.Unlock()
		}
		if heldSlot {
			<-e.readerSlots
		}
		return nil, fmt.Errorf("store: begin data txn: %w", err)
	}
	indexTx, err := e.indexDB.Begin(writable)
	if err != nil {
		dataTx.Rollback()
		if writable {
			e.writeMu.Unlock()
		}
		if heldSlot {
			<-e.readerSlots
		}
		return nil, fmt.Errorf("store: begin index txn: %w", err)
	}

	return &Txn{env: e, write: writable, dataTx: dataTx, indexTx: indexTx, heldSlot: heldSlot}, nil
}

// Writable reports whether this is a write transaction.
func (t *Txn) Writable() bool { return t.write }

// Commit makes a write transaction's effects durable and visible to
// subsequent readers. The data environment commits first; if the
// index environment then fails to commit, the inconsistency is a
// fatal corruption per §7 (the indices can be rebuilt from data, but
// the process should not continue serving from a known-divergent
// index) and is returned as such rather than silently ignored.
func (t *Txn) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.unlock()

	if err := t.dataTx.Commit(); err != nil {
		t.indexTx.Rollback()
		return fmt.Errorf("store: commit data txn: %w", err)
	}
	if err := t.indexTx.Commit(); err != nil {
		return &apierr.Corruption{Detail: fmt.Sprintf("index txn commit failed after data commit, indices are now stale: %v", err)}
	}
	return nil
}

// Abort discards all of a transaction's effects.
func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	defer t.unlock()
	t.dataTx.Rollback()
	t.indexTx.Rollback()
}

func (t *Txn) unlock() {
	if t.write {
		t.env.writeMu.Unlock()
	}
	if t.heldSlot {
		<-t.env.readerSlots
	}
}

func (t *Txn) dataBucket(name []byte) *bolt.Bucket  { return t.dataTx.Bucket(name) }
func (t *Txn) indexBucket(name []byte) *bolt.Bucket { return t.indexTx.Bucket(name) }
