package sparqlupdate

import "github.com/fcrepo-go/lsup/pkg/rdf"

// Graph is the minimal working-graph surface an Evaluator mutates. It
// is satisfied by an in-memory triple set (Memory, below) as well as
// anything else exposing the same set-algebraic operations the
// layout's Graph composes for §4.4's get_imr.
type Graph interface {
	Triples() []rdf.Triple
	Add(rdf.Triple)
	Remove(rdf.Triple)
	Contains(rdf.Triple) bool
}

// Memory is an in-memory Graph backed by a triple slice, used as the
// isolated pre/post working graph a SPARQL-Update runs against
// (§4.6: "load the resource's full graph into an isolated working
// graph").
type Memory struct {
	triples []rdf.Triple
}

// NewMemory returns a Memory graph seeded with the given triples.
func NewMemory(triples []rdf.Triple) *Memory {
	m := &Memory{}
	for _, t := range triples {
		m.Add(t)
	}
	return m
}

// Triples returns every triple currently in the graph.
func (m *Memory) Triples() []rdf.Triple {
	out := make([]rdf.Triple, len(m.triples))
	copy(out, m.triples)
	return out
}

// Contains reports whether t is present.
func (m *Memory) Contains(t rdf.Triple) bool {
	for _, existing := range m.triples {
		if existing == t {
			return true
		}
	}
	return false
}

// Add inserts t if not already present (idempotent, matching the
// quad store's add semantics, §4.3).
func (m *Memory) Add(t rdf.Triple) {
	if m.Contains(t) {
		return
	}
	m.triples = append(m.triples, t)
}

// Remove deletes t if present; removing an absent triple is a no-op.
func (m *Memory) Remove(t rdf.Triple) {
	for i, existing := range m.triples {
		if existing == t {
			m.triples = append(m.triples[:i], m.triples[i+1:]...)
			return
		}
	}
}

// Diff computes the remove/add sets to turn pre into post, matching
// §4.7's `remove = pre − post; add = post − pre`.
func Diff(pre, post []rdf.Triple) (remove, add []rdf.Triple) {
	preSet := NewMemory(pre)
	postSet := NewMemory(post)
	for _, t := range pre {
		if !postSet.Contains(t) {
			remove = append(remove, t)
		}
	}
	for _, t := range post {
		if !preSet.Contains(t) {
			add = append(add, t)
		}
	}
	return remove, add
}
