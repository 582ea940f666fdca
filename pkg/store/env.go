package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fcrepo-go/lsup/pkg/log"
	bolt "go.etcd.io/bbolt"
)

// Bucket names. The data environment holds the term dictionary and the
// primary spo:c index (the facts indices can be rebuilt from); the
// index environment holds the six lookup indices plus the c:spo
// context inverse.
var (
	bucketTermByKey  = []byte("t:st")  // key -> serialized term
	bucketKeyByHash  = []byte("th:t")  // term hash -> key
	bucketPrefixToNs = []byte("pfx:ns")
	bucketNsToPrefix = []byte("ns:pfx")
	bucketSPOToC     = []byte("spo:c") // composite s|p|o|c -> nil
	bucketContexts   = []byte("c:")    // context key -> nil

	bucketSPO = []byte("sp:o") // composite s|p|o -> nil
	bucketSO  = []byte("so:p") // composite s|o|p -> nil
	bucketPO  = []byte("po:s") // composite p|o|s -> nil
	bucketS   = []byte("s:po") // composite s|p|o -> nil
	bucketP   = []byte("p:so") // composite p|s|o -> nil
	bucketO   = []byte("o:sp") // composite o|s|p -> nil
	bucketCSP = []byte("c:spo") // composite c|s|p|o -> nil
)

var dataBuckets = [][]byte{bucketTermByKey, bucketKeyByHash, bucketPrefixToNs, bucketNsToPrefix, bucketSPOToC, bucketContexts}
var indexBuckets = [][]byte{bucketSPO, bucketSO, bucketPO, bucketS, bucketP, bucketO, bucketCSP}

// Environment is the memory-mapped, ACID key-value substrate the quad
// store and term dictionary are built on. It opens two bbolt
// environments — data and index — matching §4.1/§6.3: the indices can
// always be rebuilt from the data environment alone.
//
// Only one write transaction may be open at a time; readers never
// block on it and are never blocked by it, which is bbolt's native
// MVCC behavior (each read transaction is a consistent snapshot of the
// mmap'd file at the time it began).
type Environment struct {
	dataDB  *bolt.DB
	indexDB *bolt.DB

	writeMu sync.Mutex // serializes writers across both environments together

	seq   *sequence
	seqMu sync.Mutex

	readerSlots chan struct{} // nil when MaxSpareTxns <= 0 (unbounded)
}

// Options configures Open.
type Options struct {
	// MaxSpareTxns bounds the number of concurrently open read
	// transactions, corresponding to the `workers` config key (§6.4).
	// Zero or negative means unbounded. Unlike LMDB, bbolt has no
	// fixed reader-table size of its own; this is an application-level
	// bound enforced by Begin, returning apierr.ReaderSlotExhausted
	// when exceeded rather than blocking the caller.
	MaxSpareTxns int
}

// Open opens (creating if necessary) the RDF environment directory
// containing the `main` (data) and `index` memory-mapped files (§6.3).
func Open(dir string, opts Options) (*Environment, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create environment dir: %w", err)
	}

	boltOpts := &bolt.Options{Timeout: 5 * time.Second}

	dataDB, err := bolt.Open(filepath.Join(dir, "main"), 0o600, boltOpts)
	if err != nil {
		return nil, fmt.Errorf("store: open data environment: %w", err)
	}
	indexDB, err := bolt.Open(filepath.Join(dir, "index"), 0o600, boltOpts)
	if err != nil {
		dataDB.Close()
		return nil, fmt.Errorf("store: open index environment: %w", err)
	}

	env := &Environment{dataDB: dataDB, indexDB: indexDB, seq: newSequence()}
	if opts.MaxSpareTxns > 0 {
		env.readerSlots = make(chan struct{}, opts.MaxSpareTxns)
	}

	if err := env.bootstrap(); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.loadSequence(); err != nil {
		env.Close()
		return nil, err
	}

	log.WithComponent("store").Info().Str("dir", dir).Msg("environment opened")
	return env, nil
}

func (e *Environment) bootstrap() error {
	if err := e.dataDB.Update(func(tx *bolt.Tx) error {
		for _, b := range dataBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("store: bootstrap data buckets: %w", err)
	}

	if err := e.indexDB.Update(func(tx *bolt.Tx) error {
		for _, b := range indexBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("store: bootstrap index buckets: %w", err)
	}
	return nil
}

// loadSequence resumes the key allocator from the highest key already
// present in the term dictionary, reclaiming a stale reader slot's
// worth of work on reopen rather than restarting at the beginning.
func (e *Environment) loadSequence() error {
	return e.dataDB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTermByKey)
		c := b.Cursor()
		last, _ := c.Last()
		if last == nil {
			return nil
		}
		e.seq.seed(keyFromBytes(last))
		return nil
	})
}

// Close closes both memory-mapped environments.
func (e *Environment) Close() error {
	var errs []error
	if e.dataDB != nil {
		if err := e.dataDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.indexDB != nil {
		if err := e.indexDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("store: close environment: %v", errs)
	}
	return nil
}

// Stat reports basic environment statistics.
type Stat struct {
	Contexts int
	Terms    int
}

// Stat returns the current term and context counts.
func (e *Environment) Stat() (Stat, error) {
	var s Stat
	err := e.dataDB.View(func(tx *bolt.Tx) error {
		s.Terms = tx.Bucket(bucketTermByKey).Stats().KeyN
		s.Contexts = tx.Bucket(bucketContexts).Stats().KeyN
		return nil
	})
	return s, err
}

func (e *Environment) allocKey() (Key, error) {
	e.seqMu.Lock()
	defer e.seqMu.Unlock()
	return e.seq.next()
}
