package store

import (
	"crypto/sha1"
	"fmt"

	"github.com/fcrepo-go/lsup/pkg/rdf"
)

// HashAlgo identifies the term-hashing algorithm. SHA-1 is the
// default and is sufficient here: term hashing only needs to be
// collision-resistant enough to dedupe terms, not cryptographically
// secure against a motivated adversary (§4.2).
type HashAlgo func([]byte) []byte

// SHA1 is the default HashAlgo.
func SHA1(b []byte) []byte {
	sum := sha1.Sum(b)
	return sum[:]
}

// Intern computes a term's canonical serialization, hashes it, and
// returns the key already assigned to it — or allocates and assigns
// the next key in sequence on first sight (§4.2).
func (t *Txn) Intern(term rdf.Term) (Key, error) {
	enc := rdf.Encode(term)
	hash := SHA1(enc)

	khb := t.dataBucket(bucketKeyByHash)
	if existing := khb.Get(hash); existing != nil {
		return keyFromBytes(existing), nil
	}

	if !t.write {
		return Key{}, fmt.Errorf("store: intern requires a write transaction")
	}

	key, err := t.env.allocKey()
	if err != nil {
		return Key{}, err
	}

	tsb := t.dataBucket(bucketTermByKey)
	if err := tsb.Put(key.Bytes(), enc); err != nil {
		return Key{}, fmt.Errorf("store: write term: %w", err)
	}
	if err := khb.Put(hash, key.Bytes()); err != nil {
		return Key{}, fmt.Errorf("store: write term hash: %w", err)
	}
	return key, nil
}

// Materialize reverses Intern: given a key, it returns the term that
// was assigned it. It returns ok=false for an unknown key.
func (t *Txn) Materialize(key Key) (rdf.Term, bool, error) {
	tsb := t.dataBucket(bucketTermByKey)
	b := tsb.Get(key.Bytes())
	if b == nil {
		return rdf.Term{}, false, nil
	}
	term, err := rdf.Decode(b)
	if err != nil {
		return rdf.Term{}, false, fmt.Errorf("store: decode term at key %x: %w", key, err)
	}
	return term, true, nil
}

// Lookup is like Intern but never allocates: it returns ok=false if
// the term has not been interned.
func (t *Txn) Lookup(term rdf.Term) (Key, bool) {
	hash := SHA1(rdf.Encode(term))
	b := t.dataBucket(bucketKeyByHash).Get(hash)
	if b == nil {
		return Key{}, false
	}
	return keyFromBytes(b), true
}

// Bind registers a namespace prefix binding, overriding any existing
// binding for the same prefix (§6.2 bind).
func (t *Txn) Bind(prefix, namespace string) error {
	if err := t.dataBucket(bucketPrefixToNs).Put([]byte(prefix), []byte(namespace)); err != nil {
		return err
	}
	return t.dataBucket(bucketNsToPrefix).Put([]byte(namespace), []byte(prefix))
}

// Namespace returns the namespace bound to a prefix.
func (t *Txn) Namespace(prefix string) (string, bool) {
	b := t.dataBucket(bucketPrefixToNs).Get([]byte(prefix))
	if b == nil {
		return "", false
	}
	return string(b), true
}

// Prefix returns the prefix bound to a namespace.
func (t *Txn) Prefix(namespace string) (string, bool) {
	b := t.dataBucket(bucketNsToPrefix).Get([]byte(namespace))
	if b == nil {
		return "", false
	}
	return string(b), true
}

// Namespaces returns the full prefix -> namespace table.
func (t *Txn) Namespaces() (map[string]string, error) {
	out := map[string]string{}
	c := t.dataBucket(bucketPrefixToNs).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		out[string(k)] = string(v)
	}
	return out, nil
}
