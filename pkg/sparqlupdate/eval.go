package sparqlupdate

import "github.com/fcrepo-go/lsup/pkg/rdf"

// Evaluator applies a parsed or raw SPARQL-Update request to a
// working Graph in place (§4.6: "apply the update using an external
// SPARQL evaluator against that working graph"). Implementations may
// wrap a full third-party SPARQL engine; Subset is the package's own
// built-in fallback.
type Evaluator interface {
	Evaluate(g Graph, query string) error
}

// Subset is the built-in Evaluator covering the DELETE/INSERT/WHERE
// subset Parse understands. A WHERE clause is matched against the
// graph with a naive nested-loop join producing every satisfying
// variable binding; an empty or absent WHERE clause is treated as a
// single solution with no bindings, so DELETE DATA/INSERT DATA and
// variable-free DELETE/INSERT/WHERE {} all apply their templates
// exactly once.
type Subset struct{}

// Evaluate parses query and applies it to g.
func (Subset) Evaluate(g Graph, query string) error {
	op, err := Parse(query)
	if err != nil {
		return err
	}
	return ApplyOperation(g, op)
}

// binding maps variable name to the term it's bound to in one
// solution.
type binding map[string]rdf.Term

// ApplyOperation runs an already-parsed Operation against g: it finds
// every solution to op.Where, and for each one substitutes bound
// variables into op.Delete/op.Insert and applies the resulting
// ground triples.
func ApplyOperation(g Graph, op *Operation) error {
	solutions := solve(g, op.Where)
	if len(solutions) == 0 {
		return nil
	}

	for _, sol := range solutions {
		for _, tp := range op.Delete {
			t, ok := ground(tp, sol)
			if ok {
				g.Remove(t)
			}
		}
	}
	for _, sol := range solutions {
		for _, tp := range op.Insert {
			t, ok := ground(tp, sol)
			if ok {
				g.Add(t)
			}
		}
	}
	return nil
}

// solve finds every binding that satisfies every pattern in where
// simultaneously, via incremental nested-loop joining.
func solve(g Graph, where []TriplePattern) []binding {
	solutions := []binding{{}}
	for _, tp := range where {
		var next []binding
		for _, sol := range solutions {
			next = append(next, extend(g, tp, sol)...)
		}
		solutions = next
		if len(solutions) == 0 {
			return nil
		}
	}
	return solutions
}

// extend finds every way to bind tp's remaining variables against g's
// current triples, consistent with sol, returning one binding per
// match.
func extend(g Graph, tp TriplePattern, sol binding) []binding {
	var out []binding
	for _, t := range g.Triples() {
		next, ok := matchTriple(tp, t, sol)
		if ok {
			out = append(out, next)
		}
	}
	return out
}

func matchTriple(tp TriplePattern, t rdf.Triple, sol binding) (binding, bool) {
	next := cloneBinding(sol)
	if !matchTerm(tp.S, t.S, next) {
		return nil, false
	}
	if !matchTerm(tp.P, t.P, next) {
		return nil, false
	}
	if !matchTerm(tp.O, t.O, next) {
		return nil, false
	}
	return next, true
}

func matchTerm(tp TermPattern, actual rdf.Term, sol binding) bool {
	if !tp.IsVariable() {
		return tp.Bound == actual
	}
	if bound, ok := sol[tp.Var]; ok {
		return bound == actual
	}
	sol[tp.Var] = actual
	return true
}

func cloneBinding(sol binding) binding {
	next := make(binding, len(sol)+3)
	for k, v := range sol {
		next[k] = v
	}
	return next
}

// ground substitutes sol into tp, returning ok=false if tp still
// has an unbound variable after substitution (an under-constrained
// template term, which contributes no triple).
func ground(tp TriplePattern, sol binding) (rdf.Triple, bool) {
	s, ok := resolveTerm(tp.S, sol)
	if !ok {
		return rdf.Triple{}, false
	}
	p, ok := resolveTerm(tp.P, sol)
	if !ok {
		return rdf.Triple{}, false
	}
	o, ok := resolveTerm(tp.O, sol)
	if !ok {
		return rdf.Triple{}, false
	}
	return rdf.Triple{S: s, P: p, O: o}, true
}

func resolveTerm(tp TermPattern, sol binding) (rdf.Term, bool) {
	if !tp.IsVariable() {
		return tp.Bound, true
	}
	t, ok := sol[tp.Var]
	return t, ok
}
