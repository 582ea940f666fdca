package layout

import (
	"strings"
	"time"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
)

// Layout is the resource-centric view over a quad store environment.
// It holds no state of its own — every operation takes the Txn it
// runs inside, matching the teacher's capability-passing style rather
// than a stateful connection object.
type Layout struct{}

// New returns a Layout. It is stateless and side-effect-free to
// construct; kept as a type (rather than bare functions) so the
// resource model can hold it as a capability, per §9's note on
// breaking the model/layout cycle by injection.
func New() *Layout { return &Layout{} }

// IMROptions controls what GetIMR composes into the in-memory
// resource.
type IMROptions struct {
	// InclChildren includes the struct graph (ldp:contains triples).
	InclChildren bool
	// InclInbound includes triples from other resources that refer to
	// this one.
	InclInbound bool
	// Strict raises ResourceNotExists/Tombstone for absent or buried
	// resources instead of returning an empty graph.
	Strict bool
}

// Graph is a resource's composed triple set together with the
// resource URI it is about.
type Graph struct {
	Subject rdf.Term
	Triples []rdf.Triple
}

// GetIMR composes a resource's in-memory resource from its admin,
// user, and (optionally) struct graphs (§4.4 get_imr).
func (l *Layout) GetIMR(txn *store.Txn, uid string, opts IMROptions) (Graph, error) {
	subject := rdf.IRI(rdf.ResURI(uid))
	g := Graph{Subject: subject}

	graphs := []rdf.Term{rdf.GraphAdmin(uid), rdf.GraphUser(uid)}
	if opts.InclChildren {
		graphs = append(graphs, rdf.GraphStruct(uid))
	}

	for _, ctx := range graphs {
		trps, err := txn.Triples(store.Pattern{C: &ctx})
		if err != nil {
			return Graph{}, err
		}
		g.Triples = append(g.Triples, trps...)
	}

	if opts.InclInbound && len(g.Triples) > 0 {
		inbound, err := l.InboundRelations(txn, subject)
		if err != nil {
			return Graph{}, err
		}
		g.Triples = append(g.Triples, inbound...)
	}

	if opts.Strict {
		if err := checkStatus(uid, g.Triples); err != nil {
			return Graph{}, err
		}
	}
	return g, nil
}

// GetMetadata returns only the admin graph, which is enough to answer
// exists/HEAD-style requests without paying for user or struct
// triples (§4.4 get_metadata).
func (l *Layout) GetMetadata(txn *store.Txn, uid string, strict bool) (Graph, error) {
	ctx := rdf.GraphAdmin(uid)
	trps, err := txn.Triples(store.Pattern{C: &ctx})
	if err != nil {
		return Graph{}, err
	}
	g := Graph{Subject: rdf.IRI(rdf.ResURI(uid)), Triples: trps}
	if strict {
		if err := checkStatus(uid, g.Triples); err != nil {
			return Graph{}, err
		}
	}
	return g, nil
}

// Exists reports whether uid names a live resource: its admin graph
// asserts <uri> a ldp:Resource.
func (l *Layout) Exists(txn *store.Txn, uid string) (bool, error) {
	ctx := rdf.GraphAdmin(uid)
	subj := rdf.IRI(rdf.ResURI(uid))
	trps, err := txn.Triples(store.Pattern{S: &subj, P: &rdf.RDFType, O: &rdf.LDPResource, C: &ctx})
	if err != nil {
		return false, err
	}
	return len(trps) > 0, nil
}

func checkStatus(uid string, triples []rdf.Triple) error {
	if len(triples) == 0 {
		return &apierr.ResourceNotExists{UID: uid}
	}
	subject := rdf.IRI(rdf.ResURI(uid))
	var buriedAt time.Time
	var tombstoneOf string
	for _, t := range triples {
		if t.S != subject {
			continue
		}
		if t.P == rdf.RDFType && t.O == rdf.FcsystemTombstone {
			buriedAt = parseBuriedTime(triples)
			return &apierr.Tombstone{UID: uid, DeletedAt: buriedAt}
		}
		if t.P == rdf.FcsystemTombstoneOf {
			tombstoneOf, _ = rdf.UIDFromURI(t.O.Value)
			buriedAt = parseBuriedTime(triples)
			return &apierr.Tombstone{UID: tombstoneOf, DeletedAt: buriedAt}
		}
	}
	return nil
}

func parseBuriedTime(triples []rdf.Triple) time.Time {
	for _, t := range triples {
		if t.P == rdf.FcsystemBuried {
			if ts, err := time.Parse(time.RFC3339, t.O.Value); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

// InboundRelations returns every triple, outside historic version
// graphs, whose object is subject — i.e. other resources' references
// to this one (§4.4, get_inbound_rel). A referring triple only counts
// if its own subject is itself a registered live resource, which
// filters out incidental matches inside unregistered or historic
// graphs.
func (l *Layout) InboundRelations(txn *store.Txn, subject rdf.Term) ([]rdf.Triple, error) {
	quads, err := txn.Quads(store.Pattern{O: &subject})
	if err != nil {
		return nil, err
	}
	var out []rdf.Triple
	for _, q := range quads {
		registered, err := l.isRegisteredResource(txn, q.S)
		if err != nil {
			return nil, err
		}
		if registered {
			out = append(out, q.Triple())
		}
	}
	return out, nil
}

func (l *Layout) isRegisteredResource(txn *store.Txn, subject rdf.Term) (bool, error) {
	ctx := rdf.MetaRegistryGraph
	trps, err := txn.Triples(store.Pattern{P: &rdf.FoafPrimaryTopic, O: &subject, C: &ctx})
	if err != nil {
		return false, err
	}
	return len(trps) > 0, nil
}

// registryHasEntry reports whether ctx already carries a
// foaf:primaryTopic triple in registryGraph, i.e. whether this is the
// graph's first registration or a subsequent one.
func (l *Layout) registryHasEntry(txn *store.Txn, ctx, registryGraph rdf.Term) (bool, error) {
	trps, err := txn.Triples(store.Pattern{S: &ctx, P: &rdf.FoafPrimaryTopic, C: &registryGraph})
	if err != nil {
		return false, err
	}
	return len(trps) > 0, nil
}

// ModifyOptions controls the bookkeeping Modify performs alongside
// the triple writes.
type ModifyOptions struct {
	// Historic marks this modification as touching a version-snapshot
	// graph: every triple is written to the single hist[uid] graph, and
	// registry bookkeeping goes to the hist registry with a version
	// label instead of the live meta registry.
	Historic     bool
	VersionLabel string
	// Timestamp is the single logical transaction time stamped onto
	// every registry entry touched by this call (§4.8).
	Timestamp time.Time
}

// Modify partitions remove/add triples by graph route and applies
// them, stamping meta-registry bookkeeping for every graph that
// receives additions; a graph that only has triples removed gets no
// registry update (§4.4 modify).
func (l *Layout) Modify(txn *store.Txn, uid string, removeSet, addSet []rdf.Triple, opts ModifyOptions) error {
	removeRoutes := map[GraphKind][]rdf.Triple{}
	addRoutes := map[GraphKind][]rdf.Triple{}
	touched := map[GraphKind]bool{}

	route := Route
	graphOf := func(kind GraphKind) rdf.Term { return GraphURI(uid, kind) }
	if opts.Historic {
		// A version snapshot is one graph, hist[uid], registered once.
		route = func(rdf.Triple) GraphKind { return GraphUser }
		graphOf = func(GraphKind) rdf.Term { return rdf.GraphHist(uid) }
	}

	for _, t := range removeSet {
		kind := route(t)
		removeRoutes[kind] = append(removeRoutes[kind], t)
		touched[kind] = true
	}
	for _, t := range addSet {
		kind := route(t)
		addRoutes[kind] = append(addRoutes[kind], t)
		touched[kind] = true
	}

	for kind, trps := range removeRoutes {
		ctx := graphOf(kind)
		for _, t := range trps {
			if err := txn.RemoveQuad(rdf.Quad{S: t.S, P: t.P, O: t.O, C: ctx}); err != nil {
				return err
			}
		}
	}
	for kind, trps := range addRoutes {
		ctx := graphOf(kind)
		for _, t := range trps {
			if err := txn.AddQuad(rdf.Quad{S: t.S, P: t.P, O: t.O, C: ctx}); err != nil {
				return err
			}
		}
	}

	registryGraph := rdf.MetaRegistryGraph
	if opts.Historic {
		registryGraph = rdf.HistRegistryGraph
	}
	for kind := range touched {
		if len(addRoutes[kind]) == 0 {
			continue
		}
		ctx := graphOf(kind)
		subject := rdf.IRI(rdf.ResURI(uid))
		ts := rdf.PlainLiteral(opts.Timestamp.UTC().Format(time.RFC3339Nano))
		registered, err := l.registryHasEntry(txn, ctx, registryGraph)
		if err != nil {
			return err
		}
		if err := txn.AddQuad(rdf.Quad{S: ctx, P: rdf.FoafPrimaryTopic, O: subject, C: registryGraph}); err != nil {
			return err
		}
		// §3: the registry entry carries a single createdAt, stamped
		// only the first time a graph is registered; later Modify
		// calls update lastModified instead of adding a second
		// distinct createdAt literal.
		if registered {
			prior, err := txn.Triples(store.Pattern{S: &ctx, P: &rdf.FcrepoLastModified, C: &registryGraph})
			if err != nil {
				return err
			}
			for _, p := range prior {
				if err := txn.RemoveQuad(rdf.Quad{S: p.S, P: p.P, O: p.O, C: registryGraph}); err != nil {
					return err
				}
			}
			if err := txn.AddQuad(rdf.Quad{S: ctx, P: rdf.FcrepoLastModified, O: ts, C: registryGraph}); err != nil {
				return err
			}
		} else {
			if err := txn.AddQuad(rdf.Quad{S: ctx, P: rdf.FcrepoCreated, O: ts, C: registryGraph}); err != nil {
				return err
			}
		}
		if opts.Historic && opts.VersionLabel != "" {
			if err := txn.AddQuad(rdf.Quad{S: ctx, P: rdf.FcrepoHasVersionLabel, O: rdf.PlainLiteral(opts.VersionLabel), C: registryGraph}); err != nil {
				return err
			}
		}
		if err := txn.AddQuad(rdf.Quad{S: ctx, P: rdf.RDFType, O: graphRDFType(kind), C: registryGraph}); err != nil {
			return err
		}
	}
	return nil
}

// TruncateUserGraph removes every triple currently in a resource's
// user graph, used by the create/replace algorithm's step 4 before
// writing a replacement payload (mirrors truncate_rsrc).
func (l *Layout) TruncateUserGraph(txn *store.Txn, uid string, now time.Time) error {
	ctx := rdf.GraphUser(uid)
	trps, err := txn.Triples(store.Pattern{C: &ctx})
	if err != nil {
		return err
	}
	if len(trps) == 0 {
		return nil
	}
	return l.Modify(txn, uid, trps, nil, ModifyOptions{Timestamp: now})
}

// Descendants walks ldp:contains edges in struct graphs iteratively,
// returning every UID reachable from uid (not including uid itself).
// A visited set guards against cycles (§4.4 descendant traversal).
func (l *Layout) Descendants(txn *store.Txn, uid string) ([]string, error) {
	visited := map[string]bool{uid: true}
	var out []string

	queue := []string{uid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		ctx := rdf.GraphStruct(cur)
		subj := rdf.IRI(rdf.ResURI(cur))
		trps, err := txn.Triples(store.Pattern{S: &subj, P: &rdf.LDPContains, C: &ctx})
		if err != nil {
			return nil, err
		}
		for _, t := range trps {
			childUID, ok := rdf.UIDFromURI(t.O.Value)
			if !ok || visited[childUID] {
				continue
			}
			visited[childUID] = true
			out = append(out, childUID)
			queue = append(queue, childUID)
		}
	}
	return out, nil
}

// DescendantParents walks the same ldp:contains edges as Descendants
// but also records each descendant's immediate parent UID, so a caller
// that needs to act on the whole subtree (e.g. bury) can do it in one
// flat pass instead of re-deriving the subtree at every recursion
// level.
func (l *Layout) DescendantParents(txn *store.Txn, uid string) (order []string, parentOf map[string]string, err error) {
	visited := map[string]bool{uid: true}
	parentOf = map[string]string{}

	queue := []string{uid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		ctx := rdf.GraphStruct(cur)
		subj := rdf.IRI(rdf.ResURI(cur))
		trps, err := txn.Triples(store.Pattern{S: &subj, P: &rdf.LDPContains, C: &ctx})
		if err != nil {
			return nil, nil, err
		}
		for _, t := range trps {
			childUID, ok := rdf.UIDFromURI(t.O.Value)
			if !ok || visited[childUID] {
				continue
			}
			visited[childUID] = true
			parentOf[childUID] = cur
			order = append(order, childUID)
			queue = append(queue, childUID)
		}
	}
	return order, parentOf, nil
}

// FindRefIntViolations scans every object term for in-repo references
// that do not resolve to a live resource, skipping the fixity and
// versions endpoints the way the original excludes
// fcr:fixity/fcr:versions suffixes (§4.4 referential-integrity scan).
func (l *Layout) FindRefIntViolations(txn *store.Txn) ([]rdf.Triple, error) {
	objs, err := txn.AllTerms(store.PositionO)
	if err != nil {
		return nil, err
	}

	var out []rdf.Triple
	for _, obj := range objs {
		if obj.Kind != rdf.KindIRI || !strings.HasPrefix(obj.Value, rdf.NsFcres) {
			continue
		}
		if strings.HasSuffix(obj.Value, "fcr:fixity") || strings.Contains(obj.Value, rdf.VersionsSegment) {
			continue
		}
		base, _, _ := rdf.SplitFragment(obj.Value)
		uid, ok := rdf.UIDFromURI(base)
		if !ok {
			continue
		}
		exists, err := l.Exists(txn, uid)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		objTerm := obj
		trps, err := txn.Triples(store.Pattern{O: &objTerm})
		if err != nil {
			return nil, err
		}
		out = append(out, trps...)
	}
	return out, nil
}
