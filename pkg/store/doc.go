/*
Package store implements the repository's embedded, content-addressed
RDF quad store on top of bbolt.

# Architecture

Two bbolt environments back every Environment: `main` holds the term
dictionary and the primary spo:c index; `index` holds the six
single/two-bound lookup indices plus the c:spo inverse. Keeping them as
separate files matters because the index environment can always be
rebuilt from `main` alone, so a corrupt or stale index is a recovery
path rather than data loss.

	┌───────────────────────── Environment ─────────────────────────┐
	│                                                                 │
	│  main (data)                      index                        │
	│  ┌───────────────────────┐        ┌────────────────────────┐  │
	│  │ t:st   key -> term    │        │ s:po   sp:o             │  │
	│  │ th:t   hash -> key    │        │ p:so   po:s             │  │
	│  │ pfx:ns / ns:pfx       │        │ o:sp   so:p             │  │
	│  │ spo:c  s|p|o|c -> nil │        │ c:spo                   │  │
	│  │ c:     context set    │        │                          │  │
	│  └───────────────────────┘        └────────────────────────┘  │
	│                                                                 │
	│  Txn wraps one bolt.Tx per environment and commits/aborts both  │
	│  together under a single mutex, so writers are serialized      │
	│  across the pair as if it were one transaction.                │
	└─────────────────────────────────────────────────────────────────┘

# Term dictionary

Terms are never stored inline in a triple. Txn.Intern assigns every
term a 5-byte monotonic key the first time it is seen — keyed by a
SHA-1 hash of the term's canonical encoding in th:t, so re-interning an
already-known term costs one bucket lookup — and all eight indices
store only these keys, concatenated in the index's own field order, as
bbolt keys with an empty value. Keys are never reused within the
lifetime of an environment, even after every triple naming a term is
removed: the dictionary only grows.

bbolt has no native multi-value (DUPSORT) buckets the way LMDB does, so
a "multi-valued" index here is just a bucket whose keys all share a
common prefix; looking one up means a cursor Seek to the prefix
followed by a HasPrefix scan, not a dupsort cursor. This is the one
place the underlying engine's feature set forced a different technique
than the design this package is modeled on; everything built on top
(Txn.Triples, Txn.Quads, Txn.AllTerms) is unaffected by the substitution.

# Pattern resolution

Txn.Triples and Txn.Quads dispatch on how many of S, P, O are bound in
the Pattern:

  - three bound terms: an existence check against spo:c for that exact
    key.
  - two bound terms: a prefix scan of the one index whose key order
    starts with that pair (sp:o, so:p, or po:s).
  - one bound term: a prefix scan of the one index whose key order
    starts with that term (s:po, p:so, or o:sp).
  - none bound: a full walk of spo:c, deduplicating repeated triples
    across contexts.

A bound context (Pattern.C) is applied after candidate triples are
found, by probing spo:c for each candidate rather than folding context
into the initial dispatch — the same two-step shape the six lookup
indices plus c:spo use throughout this package.

# Transactions

Every mutation goes through a Txn obtained from Environment.Begin, read
and write alike; Commit/Abort discard both environments' bolt.Tx
together. Only one write Txn may be open at a time (Environment.writeMu
enforces it); any number of read Txns run concurrently against a
consistent mmap snapshot, lock-free, the same as plain bbolt.
*/
package store
