package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/sparqlupdate"
	"github.com/fcrepo-go/lsup/pkg/store"
)

var fragRefPattern = regexp.MustCompile(`<#([^>]*)>`)

// NormalizeUpdateStr rewrites relative references in a SPARQL-Update
// string the way ldpr.sparql_delta does: "<>" becomes the resource's
// own URI, and "<#frag>" becomes "<URI#frag>" (§4.6, §4.7).
func NormalizeUpdateStr(uid, updateStr string) string {
	uri := rdf.ResURI(uid)
	rewritten := fragRefPattern.ReplaceAllString(updateStr, "<"+uri+"#$1>")
	return strings.ReplaceAll(rewritten, "<>", "<"+uri+">")
}

// SparqlDelta evaluates a SPARQL-Update request against uid's working
// graph and returns the remove/add delta it produces, without
// applying it (§4.7 sparql_delta contract). The evaluator only ever
// sees uid's own IMR as its working graph, so updates with variable
// subjects touching other resources are silently discarded — they
// never appear in pre or post and so never appear in the diff.
func (m *Model) SparqlDelta(txn *store.Txn, uid, updateStr string, ev sparqlupdate.Evaluator) (removeSet, addSet []rdf.Triple, err error) {
	imr, err := m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
	if err != nil {
		return nil, nil, err
	}

	normalized := NormalizeUpdateStr(uid, updateStr)
	pre := imr.Triples
	post := sparqlupdate.NewMemory(pre)
	if err := ev.Evaluate(post, normalized); err != nil {
		return nil, nil, err
	}

	removeSet, addSet = sparqlupdate.Diff(pre, post.Triples())
	return removeSet, addSet, nil
}

// Update runs a SPARQL-Update request against uid, enforcing the
// server-managed-term policy on both sides of the delta before
// submitting it to the layout, and returns the resource's composed
// graph after the change (§4.6 "SPARQL-Update evaluation").
func (m *Model) Update(txn *store.Txn, uid, updateStr string, handling Handling, ev sparqlupdate.Evaluator, now time.Time) (layout.Graph, error) {
	removeSet, addSet, err := m.SparqlDelta(txn, uid, updateStr, ev)
	if err != nil {
		return layout.Graph{}, err
	}

	removeSet, err = filterManagedDelta(removeSet, handling)
	if err != nil {
		return layout.Graph{}, err
	}
	addSet, err = filterManagedDelta(addSet, handling)
	if err != nil {
		return layout.Graph{}, err
	}

	subject := rdf.IRI(rdf.ResURI(uid))
	addSet = append(addSet, rdf.Triple{S: subject, P: rdf.FcrepoLastModified, O: rdf.PlainLiteral(now.UTC().Format(time.RFC3339Nano))})

	if err := m.Layout.Modify(txn, uid, removeSet, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return layout.Graph{}, err
	}

	m.Changelog.Append(eventFor(events.EventResourceUpdated, uid, nil, "", removeSet, addSet))
	return m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
}

// filterManagedDelta applies the server-managed-term policy to one
// side of a SPARQL-Update delta (§4.7: "Validate both sets through
// the server-managed-term filter").
func filterManagedDelta(triples []rdf.Triple, handling Handling) ([]rdf.Triple, error) {
	var offending []string
	var kept []rdf.Triple
	position := apierr.PositionType
	for _, t := range triples {
		switch {
		case IsServerManagedPredicate(t.P):
			offending = append(offending, t.P.Value)
			position = apierr.PositionPredicate
		case t.P == rdf.RDFType && IsServerManagedType(t.O, false):
			offending = append(offending, t.O.Value)
		default:
			kept = append(kept, t)
		}
	}
	if len(offending) == 0 {
		return triples, nil
	}
	if handling == Strict {
		return nil, &apierr.ServerManagedTerm{Terms: offending, Position: position}
	}
	return kept, nil
}

// DeltaUpdate applies an explicit (remove, add) pair, expanding any
// wildcard positions in the remove set (a zero Term in S/P/O matches
// "any") against the resource's live IMR before applying it
// (§4.6 "Delta update", §6.1 update_delta).
func (m *Model) DeltaUpdate(txn *store.Txn, uid string, removeSet, addSet []rdf.Triple, handling Handling, now time.Time) (layout.Graph, error) {
	imr, err := m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
	if err != nil {
		return layout.Graph{}, err
	}

	expandedRemove := expandWildcards(imr.Triples, removeSet)

	expandedRemove, err = filterManagedDelta(expandedRemove, handling)
	if err != nil {
		return layout.Graph{}, err
	}
	addSet, err = filterManagedDelta(addSet, handling)
	if err != nil {
		return layout.Graph{}, err
	}

	subject := rdf.IRI(rdf.ResURI(uid))
	addSet = append(addSet, rdf.Triple{S: subject, P: rdf.FcrepoLastModified, O: rdf.PlainLiteral(now.UTC().Format(time.RFC3339Nano))})

	if err := m.Layout.Modify(txn, uid, expandedRemove, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return layout.Graph{}, err
	}

	m.Changelog.Append(eventFor(events.EventResourceUpdated, uid, nil, "", expandedRemove, addSet))
	return m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
}

// expandWildcards resolves each remove-set triple against live,
// matching on every non-zero position: a zero Term in S, P, or O
// means "any" at that position, per §4.6's delta-update wildcard
// support (None in any position matches all).
func expandWildcards(live []rdf.Triple, pattern []rdf.Triple) []rdf.Triple {
	var out []rdf.Triple
	for _, pat := range pattern {
		if !pat.S.IsZero() && !pat.P.IsZero() && !pat.O.IsZero() {
			out = append(out, pat)
			continue
		}
		for _, t := range live {
			if (pat.S.IsZero() || pat.S == t.S) &&
				(pat.P.IsZero() || pat.P == t.P) &&
				(pat.O.IsZero() || pat.O == t.O) {
				out = append(out, t)
			}
		}
	}
	return out
}
