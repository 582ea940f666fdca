package model

import (
	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/rdf"
)

// FilterServerManagedTerms enforces the server-managed triple policy
// over a provided triple set (§4.6). Under Strict handling it returns
// a *apierr.ServerManagedTerm naming every offending term; under
// Lenient handling it silently strips them and returns the remainder.
// onCreate exempts ldp:DirectContainer/IndirectContainer type
// declarations from the ban, matching smt_allow_on_create. The error's
// Position is PositionType only when every offending term is an
// rdf:type object; otherwise it is PositionPredicate.
func FilterServerManagedTerms(triples []rdf.Triple, handling Handling, onCreate bool) ([]rdf.Triple, error) {
	var offending []string
	var kept []rdf.Triple
	position := apierr.PositionType

	for _, t := range triples {
		switch {
		case IsServerManagedPredicate(t.P):
			offending = append(offending, t.P.Value)
			position = apierr.PositionPredicate
			continue
		case t.P == rdf.RDFType && IsServerManagedType(t.O, onCreate):
			offending = append(offending, t.O.Value)
			continue
		}
		kept = append(kept, t)
	}

	if len(offending) == 0 {
		return triples, nil
	}
	if handling == Strict {
		return nil, &apierr.ServerManagedTerm{Terms: offending, Position: position}
	}
	return kept, nil
}
