package model

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/config"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
)

// Model ties the layout capability, binary store, changelog, and
// configuration together into the LDP resource lifecycle (§4.6). It
// never constructs its own Layout (§9): the caller injects one.
type Model struct {
	Layout    *layout.Layout
	Changelog *events.Changelog
	Cfg       config.Config
}

// New constructs a Model over an injected layout, changelog, and
// configuration.
func New(l *layout.Layout, cl *events.Changelog, cfg config.Config) *Model {
	return &Model{Layout: l, Changelog: cl, Cfg: cfg}
}

// CreateOrReplaceInput is the normalized payload for create/replace,
// already parsed from whatever wire format the HTTP layer accepted.
type CreateOrReplaceInput struct {
	Type     LdpType
	Triples  []rdf.Triple // user-provided triples, server-managed terms not yet filtered
	Handling Handling
	Actor    string

	// Non-RDF payload fields; MimeType non-empty marks this as an
	// LDP-NR create/replace.
	MimeType string
	Digest   string
	Size     int64
}

// Result reports whether a create/replace call created a new
// resource or updated an existing one.
type Result struct {
	Created bool
}

// ParentUID returns the UID of the resource that would contain uid,
// or "" if uid is already the root.
func ParentUID(uid string) string {
	if uid == "/" {
		return ""
	}
	trimmed := strings.TrimSuffix(uid, "/")
	parent := path.Dir(trimmed)
	if parent == "." || parent == "" {
		return "/"
	}
	return parent
}

// MintUID mints a new child UID under parentUID, disambiguating slug
// collisions the way ldp_factory.mint_uid does (§4.6 supplemented
// from the original's UUIDv4 auto-naming).
func (m *Model) MintUID(txn *store.Txn, parentUID, slug string) (string, error) {
	if strings.Contains(slug, "/") {
		return "", fmt.Errorf("model: slug must not contain '/'")
	}
	prefix := strings.TrimSuffix(parentUID, "/")
	if slug != "" {
		candidate := prefix + "/" + slug
		exists, err := m.Layout.Exists(txn, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	for {
		candidate := prefix + "/" + uuid.NewString()
		if m.Cfg.LegacyPairtreeSplit {
			candidate = prefix + "/" + splitLegacyUUID(uuid.NewString())
		}
		exists, err := m.Layout.Exists(txn, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// splitLegacyUUID groups a UUID's hex digits into two-character
// directory segments for visual pairtree grouping, matching
// tbox.split_uuid under legacy_ptree_split.
func splitLegacyUUID(id string) string {
	digits := strings.ReplaceAll(id, "-", "")
	var b strings.Builder
	for i := 0; i < len(digits); i += 2 {
		end := i + 2
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
		b.WriteByte('/')
	}
	b.WriteString(id)
	return strings.TrimSuffix(b.String(), "/")
}

// CreateOrReplace runs the eight-step create/replace algorithm of
// §4.6 inside an already-open write transaction, stamping `now` as
// the single logical time for every timestamp it writes.
func (m *Model) CreateOrReplace(txn *store.Txn, uid string, in CreateOrReplaceInput, now time.Time) (Result, error) {
	meta, err := m.Layout.GetMetadata(txn, uid, true)
	existed := true
	if err != nil {
		if apierr.IsNotFound(err) {
			existed = false
		} else {
			return Result{}, err
		}
	}

	if err := checkSingleSubject(uid, in.Triples); err != nil {
		return Result{}, err
	}

	subject := rdf.IRI(rdf.ResURI(uid))
	if existed {
		wasNR := existingIsNonRdfSource(meta.Triples, subject)
		isNR := in.Type == NonRdfSource
		if wasNR != isNR {
			got, expected := "LDP-RS", "LDP-NR"
			if wasNR {
				got, expected = "LDP-NR", "LDP-RS"
			}
			return Result{}, &apierr.IncompatibleLdpType{UID: uid, Got: got, Expected: expected}
		}
	}

	// Step 1/2: filter server-managed terms, then add base LDP types
	// and server-managed bookkeeping triples.
	filtered, err := FilterServerManagedTerms(in.Triples, in.Handling, !existed)
	if err != nil {
		return Result{}, err
	}

	addSet := append([]rdf.Triple{}, filtered...)
	for _, bt := range in.Type.BaseTypes() {
		addSet = append(addSet, rdf.Triple{S: subject, P: rdf.RDFType, O: bt})
	}

	createdTerm, createdByTerm := existingCreated(meta.Triples, subject)
	if !existed {
		createdTerm = rdf.PlainLiteral(now.UTC().Format(time.RFC3339Nano))
		createdByTerm = rdf.PlainLiteral(in.Actor)
		addSet = append(addSet,
			rdf.Triple{S: subject, P: rdf.FcrepoCreated, O: createdTerm},
			rdf.Triple{S: subject, P: rdf.FcrepoCreatedBy, O: createdByTerm},
		)
	}
	addSet = append(addSet,
		rdf.Triple{S: subject, P: rdf.FcrepoLastModified, O: rdf.PlainLiteral(now.UTC().Format(time.RFC3339Nano))},
		rdf.Triple{S: subject, P: rdf.FcrepoLastModifiedBy, O: rdf.PlainLiteral(in.Actor)},
	)

	if in.Type == NonRdfSource {
		addSet = append(addSet,
			rdf.Triple{S: subject, P: rdf.EbucoreHasMimeType, O: rdf.PlainLiteral(in.MimeType)},
			rdf.Triple{S: subject, P: rdf.PremisHasMessageDigest, O: rdf.IRI(in.Digest)},
			rdf.Triple{S: subject, P: rdf.PremisHasSize, O: rdf.PlainLiteral(fmt.Sprintf("%d", in.Size))},
		)
	}

	parentUID := ParentUID(uid)
	if parentUID != "" {
		addSet = append(addSet, rdf.Triple{S: subject, P: rdf.FcrepoHasParent, O: rdf.IRI(rdf.ResURI(parentUID))})
	}

	// Step 3: referential integrity.
	addSet, err = m.enforceRefInt(txn, uid, addSet)
	if err != nil {
		return Result{}, err
	}

	// Step 4: on update, truncate user graph and strip replaceable
	// server-managed admin predicates.
	var removeSet []rdf.Triple
	if existed {
		if err := m.Layout.TruncateUserGraph(txn, uid, now); err != nil {
			return Result{}, err
		}
		for _, t := range meta.Triples {
			if t.P == rdf.FcrepoCreated || t.P == rdf.FcrepoCreatedBy || t.P == rdf.LDPContains {
				continue // protected_pred: never stripped on replace
			}
			if deletePredsOnReplace[t.P.Value] {
				removeSet = append(removeSet, t)
			}
		}
	}

	if err := m.Layout.Modify(txn, uid, removeSet, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return Result{}, err
	}

	// Step 5: containment, auto-creating missing pairtree ancestors.
	ancestorUID, err := m.ensureAncestors(txn, uid, now)
	if err != nil {
		return Result{}, err
	}
	if err := m.Layout.Modify(txn, ancestorUID, nil,
		[]rdf.Triple{{S: rdf.IRI(rdf.ResURI(ancestorUID)), P: rdf.LDPContains, O: subject}},
		layout.ModifyOptions{Timestamp: now}); err != nil {
		return Result{}, err
	}

	// Step 6: direct/indirect membership propagation.
	if err := m.propagateMembership(txn, ancestorUID, subject, addSet, now); err != nil {
		return Result{}, err
	}

	// Step 8: changelog event.
	eventType := events.EventResourceCreated
	if existed {
		eventType = events.EventResourceUpdated
	}
	var types []string
	for _, bt := range in.Type.BaseTypes() {
		types = append(types, bt.Value)
	}
	m.Changelog.Append(events.Event{
		Type: eventType, UID: uid, ResourceTypes: types, Actor: in.Actor,
		RemoveSet: quadify(removeSet, rdf.GraphAdmin(uid)), AddSet: quadify(addSet, rdf.GraphAdmin(uid)),
	})

	return Result{Created: !existed}, nil
}

// checkSingleSubject enforces the single-subject rule (§7, Open
// Question b): enabled by default for create/replace payloads, every
// triple in the client-provided graph must describe the resource
// itself, allowing "#frag" subjects that share the resource's base
// URI. DeltaUpdate's wildcard expansion deliberately does not call
// this (see DESIGN.md) since it legitimately touches triples whose
// subject the caller does not own by construction of the remove set.
func checkSingleSubject(uid string, triples []rdf.Triple) error {
	base := rdf.ResURI(uid)
	for _, t := range triples {
		if t.S.Kind != rdf.KindIRI {
			return &apierr.SingleSubject{UID: uid, Subject: t.S.Value}
		}
		subjBase, _, _ := rdf.SplitFragment(t.S.Value)
		if subjBase != base {
			return &apierr.SingleSubject{UID: uid, Subject: t.S.Value}
		}
	}
	return nil
}

func existingCreated(triples []rdf.Triple, subject rdf.Term) (created, createdBy rdf.Term) {
	for _, t := range triples {
		if t.S != subject {
			continue
		}
		if t.P == rdf.FcrepoCreated {
			created = t.O
		}
		if t.P == rdf.FcrepoCreatedBy {
			createdBy = t.O
		}
	}
	return
}

// enforceRefInt checks every in-repo object IRI in addSet against the
// configured policy (§4.6 step 3): strict raises, lenient prunes
// dangling references, off skips the check entirely.
func (m *Model) enforceRefInt(txn *store.Txn, uid string, addSet []rdf.Triple) ([]rdf.Triple, error) {
	if m.Cfg.ReferentialIntegrity == config.RefIntOff {
		return addSet, nil
	}
	var kept []rdf.Triple
	for _, t := range addSet {
		if t.O.Kind != rdf.KindIRI || !strings.HasPrefix(t.O.Value, rdf.NsFcres) {
			kept = append(kept, t)
			continue
		}
		base, _, _ := rdf.SplitFragment(t.O.Value)
		objUID, ok := rdf.UIDFromURI(base)
		if !ok || objUID == uid {
			kept = append(kept, t)
			continue
		}
		exists, err := m.Layout.Exists(txn, objUID)
		if err != nil {
			return nil, err
		}
		if exists {
			kept = append(kept, t)
			continue
		}
		if m.Cfg.ReferentialIntegrity == config.RefIntStrict {
			return nil, &apierr.RefIntViolation{UID: uid, Obj: t.O.Value}
		}
		// lenient: prune the dangling triple
	}
	return kept, nil
}

// ensureAncestors walks up from uid's parent until it finds a live
// resource, auto-creating pairtree containers for any missing
// intermediate segments (§4.6 step 5), and returns the UID of the
// nearest existing ancestor.
func (m *Model) ensureAncestors(txn *store.Txn, uid string, now time.Time) (string, error) {
	parent := ParentUID(uid)
	if parent == "" {
		return "", nil
	}

	var missing []string
	cur := parent
	for cur != "" {
		exists, err := m.Layout.Exists(txn, cur)
		if err != nil {
			return "", err
		}
		if exists {
			break
		}
		missing = append([]string{cur}, missing...)
		cur = ParentUID(cur)
	}

	for _, segUID := range missing {
		subject := rdf.IRI(rdf.ResURI(segUID))
		add := []rdf.Triple{
			{S: subject, P: rdf.RDFType, O: rdf.LDPResource},
			{S: subject, P: rdf.RDFType, O: rdf.LDPContainer},
			{S: subject, P: rdf.RDFType, O: rdf.LDPBasicContainer},
			{S: subject, P: rdf.RDFType, O: rdf.FcrepoPairtree},
			{S: subject, P: rdf.FcrepoCreated, O: rdf.PlainLiteral(now.UTC().Format(time.RFC3339Nano))},
		}
		segParent := ParentUID(segUID)
		if segParent != "" {
			add = append(add, rdf.Triple{S: subject, P: rdf.FcrepoHasParent, O: rdf.IRI(rdf.ResURI(segParent))})
		}
		if err := m.Layout.Modify(txn, segUID, nil, add, layout.ModifyOptions{Timestamp: now}); err != nil {
			return "", err
		}
		if segParent != "" {
			if err := m.Layout.Modify(txn, segParent, nil,
				[]rdf.Triple{{S: rdf.IRI(rdf.ResURI(segParent)), P: rdf.LDPContains, O: subject}},
				layout.ModifyOptions{Timestamp: now}); err != nil {
				return "", err
			}
		}
	}

	if len(missing) > 0 {
		return missing[len(missing)-1], nil
	}
	return parent, nil
}

// propagateMembership adds the direct/indirect container membership
// triple to the graphs of the ancestor's ldp:membershipResource when
// the ancestor is a DirectContainer or IndirectContainer (§4.6 step 6).
func (m *Model) propagateMembership(txn *store.Txn, ancestorUID string, newSubject rdf.Term, newAddSet []rdf.Triple, now time.Time) error {
	ancestorMeta, err := m.Layout.GetMetadata(txn, ancestorUID, false)
	if err != nil {
		return err
	}

	var isDirect, isIndirect bool
	var mbrResource, mbrRelation, insertedRel rdf.Term
	ancestorSubject := rdf.IRI(rdf.ResURI(ancestorUID))
	for _, t := range ancestorMeta.Triples {
		if t.S != ancestorSubject {
			continue
		}
		switch {
		case t.P == rdf.RDFType && t.O == rdf.LDPDirectContainer:
			isDirect = true
		case t.P == rdf.RDFType && t.O == rdf.LDPIndirectContainer:
			isIndirect = true
		case t.P == rdf.LDPMembershipResource:
			mbrResource = t.O
		case t.P == rdf.LDPHasMemberRelation:
			mbrRelation = t.O
		case t.P == rdf.LDPInsertedContentRel:
			insertedRel = t.O
		}
	}
	if !isDirect && !isIndirect {
		return nil
	}
	if mbrResource.IsZero() || mbrRelation.IsZero() {
		return nil
	}

	object := newSubject
	if isIndirect && !insertedRel.IsZero() {
		found := false
		for _, t := range newAddSet {
			if t.S == newSubject && t.P == insertedRel {
				object = t.O
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	targetUID, ok := rdf.UIDFromURI(mbrResource.Value)
	if !ok {
		return nil
	}
	return m.Layout.Modify(txn, targetUID, nil,
		[]rdf.Triple{{S: mbrResource, P: mbrRelation, O: object}},
		layout.ModifyOptions{Timestamp: now})
}

func quadify(triples []rdf.Triple, ctx rdf.Term) []rdf.Quad {
	if len(triples) == 0 {
		return nil
	}
	out := make([]rdf.Quad, len(triples))
	for i, t := range triples {
		out[i] = rdf.Quad{S: t.S, P: t.P, O: t.O, C: ctx}
	}
	return out
}
