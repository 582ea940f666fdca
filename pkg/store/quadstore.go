package store

import (
	"bytes"

	"github.com/fcrepo-go/lsup/pkg/rdf"
)

// Pattern is a triple or quad pattern. A nil field is unbound ("any
// term"); a non-nil field constrains that position to a specific
// term. C additionally constrains the result to a single named graph.
type Pattern struct {
	S, P, O, C *rdf.Term
}

type tripleKey struct {
	s, p, o Key
}

func (k tripleKey) order(order [3]int) []byte {
	parts := [3]Key{k.s, k.p, k.o}
	out := make([]byte, 0, 15)
	for _, pos := range order {
		out = append(out, parts[pos][:]...)
	}
	return out
}

// decodeFromOrdered recovers (s,p,o) keys from a 15-byte composite key
// built with the given position order.
func decodeFromOrdered(b []byte, order [3]int) tripleKey {
	var parts [3]Key
	for i, pos := range order {
		copy(parts[pos][:], b[i*KeyLen:(i+1)*KeyLen])
	}
	return tripleKey{s: parts[0], p: parts[1], o: parts[2]}
}

var (
	orderSPO = [3]int{0, 1, 2} // s:po and sp:o
	orderPSO = [3]int{1, 0, 2} // p:so
	orderOSP = [3]int{2, 0, 1} // o:sp
	orderPOS = [3]int{1, 2, 0} // po:s
	orderSOP = [3]int{0, 2, 1} // so:p
)

// internTriple interns s, p, o and returns their keys, allocating new
// keys for any term not already in the dictionary.
func (t *Txn) internTriple(s, p, o rdf.Term) (tripleKey, error) {
	sk, err := t.Intern(s)
	if err != nil {
		return tripleKey{}, err
	}
	pk, err := t.Intern(p)
	if err != nil {
		return tripleKey{}, err
	}
	ok, err := t.Intern(o)
	if err != nil {
		return tripleKey{}, err
	}
	return tripleKey{sk, pk, ok}, nil
}

// AddQuad interns all four terms and inserts the quad into the
// primary index, the context set, the context inverse, and all six
// lookup indices (§4.3 Add). Adding a quad that is already present is
// a no-op.
func (t *Txn) AddQuad(q rdf.Quad) error {
	tk, err := t.internTriple(q.S, q.P, q.O)
	if err != nil {
		return err
	}
	ck, err := t.Intern(q.C)
	if err != nil {
		return err
	}

	spoc := append(tk.order(orderSPO), ck[:]...)
	if err := t.dataBucket(bucketSPOToC).Put(spoc, nil); err != nil {
		return err
	}
	if err := t.dataBucket(bucketContexts).Put(ck[:], nil); err != nil {
		return err
	}
	cspo := append(append([]byte{}, ck[:]...), tk.order(orderSPO)...)
	if err := t.indexBucket(bucketCSP).Put(cspo, nil); err != nil {
		return err
	}

	for _, e := range []struct {
		bucket []byte
		order  [3]int
	}{
		{bucketS, orderSPO},
		{bucketP, orderPSO},
		{bucketO, orderOSP},
		{bucketPO, orderPOS},
		{bucketSO, orderSOP},
		{bucketSPO, orderSPO},
	} {
		if err := t.indexBucket(e.bucket).Put(tk.order(e.order), nil); err != nil {
			return err
		}
	}
	return nil
}

// RemoveQuad deletes a quad from all eight indices. Removing a quad
// that is not present is a no-op. When the triple has no remaining
// contexts after removal it is dropped from spo:c entirely; when a
// context has no remaining triples it is dropped from the context set
// (§4.3 Remove, cleanup policy).
func (t *Txn) RemoveQuad(q rdf.Quad) error {
	sk, sok := t.Lookup(q.S)
	pk, pok := t.Lookup(q.P)
	ok_, ook := t.Lookup(q.O)
	ck, cok := t.Lookup(q.C)
	if !sok || !pok || !ook || !cok {
		return nil // unknown term in any position: nothing to remove
	}
	tk := tripleKey{sk, pk, ok_}

	spoc := append(tk.order(orderSPO), ck[:]...)
	if err := t.dataBucket(bucketSPOToC).Delete(spoc); err != nil {
		return err
	}
	cspo := append(append([]byte{}, ck[:]...), tk.order(orderSPO)...)
	if err := t.indexBucket(bucketCSP).Delete(cspo); err != nil {
		return err
	}

	remaining, err := t.tripleHasAnyContext(tk)
	if err != nil {
		return err
	}
	if !remaining {
		for _, e := range []struct {
			bucket []byte
			order  [3]int
		}{
			{bucketS, orderSPO},
			{bucketP, orderPSO},
			{bucketO, orderOSP},
			{bucketPO, orderPOS},
			{bucketSO, orderSOP},
			{bucketSPO, orderSPO},
		} {
			if err := t.indexBucket(e.bucket).Delete(tk.order(e.order)); err != nil {
				return err
			}
		}
	}

	empty, err := t.contextIsEmpty(ck)
	if err != nil {
		return err
	}
	if empty {
		if err := t.dataBucket(bucketContexts).Delete(ck[:]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Txn) tripleHasAnyContext(tk tripleKey) (bool, error) {
	prefix := tk.order(orderSPO)
	c := t.dataBucket(bucketSPOToC).Cursor()
	k, _ := c.Seek(prefix)
	return k != nil && bytes.HasPrefix(k, prefix), nil
}

func (t *Txn) contextIsEmpty(ck Key) (bool, error) {
	prefix := ck[:]
	c := t.indexBucket(bucketCSP).Cursor()
	k, _ := c.Seek(prefix)
	return !(k != nil && bytes.HasPrefix(k, prefix)), nil
}

// AddGraph interns and registers a context in the context set, even
// if it has no triples yet (§4.3 Graph management).
func (t *Txn) AddGraph(c rdf.Term) error {
	ck, err := t.Intern(c)
	if err != nil {
		return err
	}
	return t.dataBucket(bucketContexts).Put(ck[:], nil)
}

// RemoveGraph removes every quad in context c, then the context entry
// itself.
func (t *Txn) RemoveGraph(c rdf.Term) error {
	ck, ok := t.Lookup(c)
	if !ok {
		return nil
	}
	quads, err := t.quadsInContext(ck)
	if err != nil {
		return err
	}
	for _, q := range quads {
		if err := t.RemoveQuad(q); err != nil {
			return err
		}
	}
	return t.dataBucket(bucketContexts).Delete(ck[:])
}

func (t *Txn) quadsInContext(ck Key) ([]rdf.Quad, error) {
	cTerm, ok, err := t.Materialize(ck)
	if err != nil || !ok {
		return nil, err
	}
	var out []rdf.Quad
	prefix := ck[:]
	c := t.indexBucket(bucketCSP).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		tk := decodeFromOrdered(k[KeyLen:], orderSPO)
		s, _, err := t.Materialize(tk.s)
		if err != nil {
			return nil, err
		}
		p, _, err := t.Materialize(tk.p)
		if err != nil {
			return nil, err
		}
		o, _, err := t.Materialize(tk.o)
		if err != nil {
			return nil, err
		}
		out = append(out, rdf.Quad{S: s, P: p, O: o, C: cTerm})
	}
	return out, nil
}

// Quads resolves a triple-pattern (optionally with a bound context)
// into the matching quads, implementing the b=0..3 resolution
// algorithm of §4.3.
func (t *Txn) Quads(pat Pattern) ([]rdf.Quad, error) {
	candidates, err := t.resolveCandidates(pat)
	if err != nil {
		return nil, err
	}

	var boundCtx *Key
	if pat.C != nil {
		ck, ok := t.Lookup(*pat.C)
		if !ok {
			return nil, nil // unbound-in-dictionary context short-circuits to empty
		}
		boundCtx = &ck
	}

	var out []rdf.Quad
	for _, tk := range candidates {
		ctxs, err := t.contextsOf(tk)
		if err != nil {
			return nil, err
		}
		for _, ck := range ctxs {
			if boundCtx != nil && ck != *boundCtx {
				continue
			}
			cTerm, ok, err := t.Materialize(ck)
			if err != nil || !ok {
				continue
			}
			s, _, _ := t.Materialize(tk.s)
			p, _, _ := t.Materialize(tk.p)
			o, _, _ := t.Materialize(tk.o)
			out = append(out, rdf.Quad{S: s, P: p, O: o, C: cTerm})
		}
	}
	return out, nil
}

// Triples is like Quads but projects away the context, deduplicating
// triples that appear in more than one graph.
func (t *Txn) Triples(pat Pattern) ([]rdf.Triple, error) {
	quads, err := t.Quads(pat)
	if err != nil {
		return nil, err
	}
	seen := map[rdf.Triple]bool{}
	var out []rdf.Triple
	for _, q := range quads {
		tr := q.Triple()
		if !seen[tr] {
			seen[tr] = true
			out = append(out, tr)
		}
	}
	return out, nil
}

func (t *Txn) contextsOf(tk tripleKey) ([]Key, error) {
	prefix := tk.order(orderSPO)
	var out []Key
	c := t.dataBucket(bucketSPOToC).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		out = append(out, keyFromBytes(k[15:20]))
	}
	return out, nil
}

// resolveCandidates implements the b=0..3 bound-term dispatch,
// ignoring context (context is applied afterward by Quads).
func (t *Txn) resolveCandidates(pat Pattern) ([]tripleKey, error) {
	bound := 0
	if pat.S != nil {
		bound++
	}
	if pat.P != nil {
		bound++
	}
	if pat.O != nil {
		bound++
	}

	lookup := func(term *rdf.Term) (Key, bool) {
		if term == nil {
			return Key{}, false
		}
		return t.Lookup(*term)
	}

	sk, sok := lookup(pat.S)
	pk, pok := lookup(pat.P)
	ok_, ook := lookup(pat.O)

	// Any bound term absent from the dictionary short-circuits to
	// empty, per §4.3 failure modes.
	if (pat.S != nil && !sok) || (pat.P != nil && !pok) || (pat.O != nil && !ook) {
		return nil, nil
	}

	switch bound {
	case 3:
		prefix := tripleKey{sk, pk, ok_}.order(orderSPO)
		c := t.dataBucket(bucketSPOToC).Cursor()
		k, _ := c.Seek(prefix)
		if k != nil && bytes.HasPrefix(k, prefix) {
			return []tripleKey{{sk, pk, ok_}}, nil
		}
		return nil, nil
	case 2:
		switch {
		case pat.S != nil && pat.P != nil:
			return t.scanTwoBound(bucketSPO, orderSPO, sk, pk, func(rem Key) tripleKey {
				return tripleKey{sk, pk, rem}
			})
		case pat.S != nil && pat.O != nil:
			return t.scanTwoBound(bucketSO, orderSOP, sk, ok_, func(rem Key) tripleKey {
				return tripleKey{sk, rem, ok_}
			})
		case pat.P != nil && pat.O != nil:
			return t.scanTwoBound(bucketPO, orderPOS, pk, ok_, func(rem Key) tripleKey {
				return tripleKey{rem, pk, ok_}
			})
		}
	case 1:
		switch {
		case pat.S != nil:
			return t.scanOneBound(bucketS, orderSPO, sk)
		case pat.P != nil:
			return t.scanOneBound(bucketP, orderPSO, pk)
		case pat.O != nil:
			return t.scanOneBound(bucketO, orderOSP, ok_)
		}
	case 0:
		return t.scanAll()
	}
	return nil, nil
}

func (t *Txn) scanOneBound(bucket []byte, order [3]int, bound Key) ([]tripleKey, error) {
	var out []tripleKey
	prefix := bound[:]
	c := t.indexBucket(bucket).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		out = append(out, decodeFromOrdered(k, order))
	}
	return out, nil
}

func (t *Txn) scanTwoBound(bucket []byte, order [3]int, a, b Key, build func(rem Key) tripleKey) ([]tripleKey, error) {
	var out []tripleKey
	prefix := append(append([]byte{}, a[:]...), b[:]...)
	c := t.indexBucket(bucket).Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		var rem Key
		copy(rem[:], k[10:15])
		out = append(out, build(rem))
	}
	return out, nil
}

func (t *Txn) scanAll() ([]tripleKey, error) {
	var out []tripleKey
	c := t.dataBucket(bucketSPOToC).Cursor()
	seen := map[tripleKey]bool{}
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		tk := decodeFromOrdered(k[:15], orderSPO)
		if !seen[tk] {
			seen[tk] = true
			out = append(out, tk)
		}
	}
	return out, nil
}

// Position identifies a term position for AllTerms.
type Position int

const (
	PositionS Position = iota
	PositionP
	PositionO
)

// AllTerms scans the key set of the appropriate one-bound index with
// nodup iteration, returning every distinct term that ever occupies
// the given position (§4.3 Listing).
func (t *Txn) AllTerms(pos Position) ([]rdf.Term, error) {
	var bucket []byte
	var order [3]int
	switch pos {
	case PositionS:
		bucket, order = bucketS, orderSPO
	case PositionP:
		bucket, order = bucketP, orderPSO
	case PositionO:
		bucket, order = bucketO, orderOSP
	}

	seen := map[Key]bool{}
	var out []rdf.Term
	c := t.indexBucket(bucket).Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		tk := decodeFromOrdered(k, order)
		var key Key
		switch pos {
		case PositionS:
			key = tk.s
		case PositionP:
			key = tk.p
		case PositionO:
			key = tk.o
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		term, ok, err := t.Materialize(key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, term)
		}
	}
	return out, nil
}

// Contexts returns the named graphs a triple appears in, or every
// known context if triple is nil (§6.2 contexts).
func (t *Txn) Contexts(triple *rdf.Triple) ([]rdf.Term, error) {
	if triple == nil {
		var out []rdf.Term
		c := t.dataBucket(bucketContexts).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			term, ok, err := t.Materialize(keyFromBytes(k))
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, term)
			}
		}
		return out, nil
	}

	sk, sok := t.Lookup(triple.S)
	pk, pok := t.Lookup(triple.P)
	ok_, ook := t.Lookup(triple.O)
	if !sok || !pok || !ook {
		return nil, nil
	}
	keys, err := t.contextsOf(tripleKey{sk, pk, ok_})
	if err != nil {
		return nil, err
	}
	var out []rdf.Term
	for _, ck := range keys {
		term, ok, err := t.Materialize(ck)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, term)
		}
	}
	return out, nil
}
