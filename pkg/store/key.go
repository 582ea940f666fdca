package store

import (
	"encoding/binary"
	"fmt"
)

// KeyLen is the fixed length, in bytes, of every term key. The
// allocator reserves the low byte values (anything below keyStartByte)
// so that a handful of sentinel keys can be hard-coded if ever needed.
const KeyLen = 5

const keyStartByte = 0x01

// Key is a fixed-length term key. Keys are assigned by a monotonic
// lexical sequence and are never reused within the lifetime of an
// environment, even after the term they named is deleted.
type Key [KeyLen]byte

// Bytes returns k as a slice backed by a fresh copy.
func (k Key) Bytes() []byte {
	b := make([]byte, KeyLen)
	copy(b, k[:])
	return b
}

// IsZero reports whether k is the zero key (used as an "unbound" marker
// internally; never a valid allocated key since allocation starts at
// keyStartByte).
func (k Key) IsZero() bool { return k == Key{} }

func keyFromBytes(b []byte) Key {
	var k Key
	copy(k[:], b)
	return k
}

// sequence is a monotonically increasing lexical byte-string counter,
// matching the LMDB-based original's 5-byte key allocator: increment
// the rightmost byte, carry left on overflow, and fail once the whole
// range is exhausted.
type sequence struct {
	cur Key
}

func newSequence() *sequence {
	s := &sequence{}
	s.cur[0] = keyStartByte
	return s
}

// seed resets the sequence to resume after the given last-issued key,
// used when reopening an existing environment.
func (s *sequence) seed(last Key) {
	s.cur = last
	s.advance()
}

// next returns the next key in the sequence.
func (s *sequence) next() (Key, error) {
	k := s.cur
	if err := s.advance(); err != nil {
		return Key{}, err
	}
	return k, nil
}

func (s *sequence) advance() error {
	n := binary.BigEndian.Uint64(append(make([]byte, 8-KeyLen), s.cur[:]...))
	n++
	if n > (uint64(1)<<(8*KeyLen) - 1) {
		return fmt.Errorf("store: key sequence exhausted (%d-byte keys)", KeyLen)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	copy(s.cur[:], buf[8-KeyLen:])
	if s.cur[0] < keyStartByte {
		s.cur[0] = keyStartByte
	}
	return nil
}
