package model

import (
	"time"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
)

// Delete removes a live resource. leaveTombstone selects soft-delete
// (bury, §4.6 "Bury (soft-delete)") over hard-delete (forget).
func (m *Model) Delete(txn *store.Txn, uid string, leaveTombstone bool, now time.Time) error {
	meta, err := m.Layout.GetMetadata(txn, uid, false)
	if err != nil {
		return err
	}
	if len(meta.Triples) == 0 {
		return &apierr.ResourceNotExists{UID: uid}
	}
	if !leaveTombstone {
		return m.forget(txn, uid, now)
	}
	// Tombstone monotonicity (§8): a buried resource only accepts
	// resurrect or forget, never a second bury.
	if err := layoutCheckLive(uid, meta.Triples); err != nil {
		return err
	}
	return m.bury(txn, uid, uid, meta, now)
}

// layoutCheckLive rejects an operation against a tombstoned resource,
// reusing the same admin-graph scan GetMetadata's strict mode uses.
func layoutCheckLive(uid string, triples []rdf.Triple) error {
	subject := rdf.IRI(rdf.ResURI(uid))
	for _, t := range triples {
		if t.S == subject && t.P == rdf.RDFType && t.O == rdf.FcsystemTombstone {
			return &apierr.Tombstone{UID: uid}
		}
	}
	return nil
}

// inboundQuads returns every quad, in any resource's graph, whose
// object is subject, keeping the quad's own context so the caller can
// remove it from wherever it actually lives rather than from uid's
// own graphs (§4.6 bury: "snapshot inbound-referrers before cutting
// inbound edges").
func inboundQuads(txn *store.Txn, subject rdf.Term) ([]rdf.Quad, error) {
	return txn.Quads(store.Pattern{O: &subject})
}

// bury replaces a resource's admin graph with a tombstone marker and
// buries its descendants, each pointing at its own immediate parent as
// tombstoneOfUID (§4.6 "Bury"). Descendants are walked once via
// DescendantParents and buried in that single flat pass — not by
// recursing into each child's own subtree, which Descendants already
// included — so a deep tree is buried exactly once per resource.
func (m *Model) bury(txn *store.Txn, uid, tombstoneOfUID string, meta layout.Graph, now time.Time) error {
	if err := m.buryOne(txn, uid, tombstoneOfUID, meta, now); err != nil {
		return err
	}

	order, parentOf, err := m.Layout.DescendantParents(txn, uid)
	if err != nil {
		return err
	}
	for _, childUID := range order {
		childMeta, err := m.Layout.GetMetadata(txn, childUID, false)
		if err != nil {
			return err
		}
		if len(childMeta.Triples) == 0 {
			continue // no admin graph left: nothing to bury
		}
		if err := m.buryOne(txn, childUID, parentOf[childUID], childMeta, now); err != nil {
			return err
		}
	}
	return nil
}

// buryOne tombstones a single resource's admin graph and cuts its
// inbound references, without touching descendants.
func (m *Model) buryOne(txn *store.Txn, uid, tombstoneOfUID string, meta layout.Graph, now time.Time) error {
	subject := rdf.IRI(rdf.ResURI(uid))

	inbound, err := inboundQuads(txn, subject)
	if err != nil {
		return err
	}
	for _, q := range inbound {
		if err := txn.RemoveQuad(q); err != nil {
			return err
		}
	}

	addSet := []rdf.Triple{
		{S: subject, P: rdf.RDFType, O: rdf.FcsystemTombstone},
		{S: subject, P: rdf.FcsystemBuried, O: rdf.PlainLiteral(now.UTC().Format(time.RFC3339))},
	}
	if tombstoneOfUID != uid {
		addSet = append(addSet, rdf.Triple{S: subject, P: rdf.FcsystemTombstoneOf, O: rdf.IRI(rdf.ResURI(tombstoneOfUID))})
	}

	if err := m.Layout.Modify(txn, uid, meta.Triples, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return err
	}

	removeSet := append(append([]rdf.Triple{}, meta.Triples...), quadsToTriples(inbound)...)
	m.Changelog.Append(eventFor(events.EventResourceDeleted, uid, nil, "", removeSet, addSet))
	return nil
}

// forget hard-deletes a resource: its admin, user and struct graphs
// are dropped, inbound references are cut, and descendants recurse
// (§4.6 "Forget (hard-delete)"). The hist graphs holding its version
// snapshots are not removed. Forget is terminal — nothing can
// resurrect a forgotten resource.
func (m *Model) forget(txn *store.Txn, uid string, now time.Time) error {
	subject := rdf.IRI(rdf.ResURI(uid))

	children, err := m.Layout.Descendants(txn, uid)
	if err != nil {
		return err
	}
	for _, childUID := range children {
		if err := m.forget(txn, childUID, now); err != nil {
			return err
		}
	}

	inbound, err := inboundQuads(txn, subject)
	if err != nil {
		return err
	}
	for _, q := range inbound {
		if err := txn.RemoveQuad(q); err != nil {
			return err
		}
	}

	for _, ctx := range []rdf.Term{rdf.GraphAdmin(uid), rdf.GraphUser(uid), rdf.GraphStruct(uid)} {
		if err := txn.RemoveGraph(ctx); err != nil {
			return err
		}
	}

	m.Changelog.Append(eventFor(events.EventResourceForgotten, uid, nil, "", nil, nil))
	return nil
}

// Resurrect reverses a bury: it strips the tombstone triples, restores
// ldp:Resource, and recurses into descendant tombstones pointing at
// this resource (§4.6 "Resurrect"). It is an error against a resource
// that was never buried.
func (m *Model) Resurrect(txn *store.Txn, uid string, now time.Time) error {
	ctx := rdf.GraphAdmin(uid)
	triples, err := txn.Triples(store.Pattern{C: &ctx})
	if err != nil {
		return err
	}
	if len(triples) == 0 {
		return &apierr.ResourceNotExists{UID: uid}
	}

	subject := rdf.IRI(rdf.ResURI(uid))
	var removeSet, addSet []rdf.Triple
	buried := false
	for _, t := range triples {
		if t.S != subject {
			continue
		}
		if t.P == rdf.RDFType && t.O == rdf.FcsystemTombstone {
			removeSet = append(removeSet, t)
			buried = true
			continue
		}
		if t.P == rdf.FcsystemBuried || t.P == rdf.FcsystemTombstoneOf {
			removeSet = append(removeSet, t)
		}
	}
	if !buried {
		return &apierr.ResourceNotExists{UID: uid}
	}
	addSet = append(addSet, rdf.Triple{S: subject, P: rdf.RDFType, O: rdf.LDPResource})

	if err := m.Layout.Modify(txn, uid, removeSet, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return err
	}

	if err := m.resurrectTombstonedDescendants(txn, uid, now); err != nil {
		return err
	}

	m.Changelog.Append(eventFor(events.EventResourceResurrected, uid, nil, "", removeSet, addSet))
	return nil
}

// resurrectTombstonedDescendants finds every tombstone pointing at uid
// via fcsystem:tombstone and resurrects it in turn.
func (m *Model) resurrectTombstonedDescendants(txn *store.Txn, uid string, now time.Time) error {
	parentURI := rdf.IRI(rdf.ResURI(uid))
	quads, err := txn.Quads(store.Pattern{P: &rdf.FcsystemTombstoneOf, O: &parentURI})
	if err != nil {
		return err
	}
	for _, q := range quads {
		childUID, ok := rdf.UIDFromURI(q.S.Value)
		if !ok {
			continue
		}
		if err := m.Resurrect(txn, childUID, now); err != nil {
			return err
		}
	}
	return nil
}

func quadsToTriples(quads []rdf.Quad) []rdf.Triple {
	if len(quads) == 0 {
		return nil
	}
	out := make([]rdf.Triple, len(quads))
	for i, q := range quads {
		out[i] = q.Triple()
	}
	return out
}
