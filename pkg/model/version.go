package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
)

// CreateVersion mints a version label (slug or UUID, disambiguated
// against existing versions), snapshots the live admin∪user graphs
// with subjects rewritten to the version URI into its own hist graph,
// hist[<uid>/fcr:versions/<label>], and
// records hasVersion/hasVersions pointers on the live admin graph
// (§4.6 Versioning). It returns the version label alone; GetVersion
// and RevertToVersion take the same label back alongside uid.
func (m *Model) CreateVersion(txn *store.Txn, uid, slug string, now time.Time) (verLabel string, err error) {
	live, err := m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
	if err != nil {
		return "", err
	}

	verLabel = slug
	if verLabel == "" {
		verLabel = uuid.NewString()
	}
	verUID := uid + "/" + rdf.VersionsSegment + "/" + verLabel
	if exists, err := m.snapshotExists(txn, verUID); err != nil {
		return "", err
	} else if exists {
		return "", fmt.Errorf("model: version %q already exists", verLabel)
	}

	verSubject := rdf.IRI(rdf.ResURI(verUID))
	liveSubject := rdf.IRI(rdf.ResURI(uid))

	var snapshot []rdf.Triple
	for _, t := range live.Triples {
		if t.S != liveSubject {
			continue
		}
		if ignoreVersionPredicates[t.P.Value] {
			continue
		}
		if t.P == rdf.RDFType && ignoreVersionTypes[t.O.Value] {
			continue
		}
		snapshot = append(snapshot, rdf.Triple{S: verSubject, P: t.P, O: t.O})
	}
	snapshot = append(snapshot, rdf.Triple{S: verSubject, P: rdf.RDFType, O: rdf.FcrepoVersion})

	if err := m.Layout.Modify(txn, verUID, nil, snapshot, layout.ModifyOptions{
		Historic: true, VersionLabel: verLabel, Timestamp: now,
	}); err != nil {
		return "", err
	}

	verURI := rdf.IRI(rdf.ResURI(verUID))
	if err := m.Layout.Modify(txn, uid, nil, []rdf.Triple{
		{S: liveSubject, P: rdf.FcrepoHasVersion, O: verURI},
		{S: liveSubject, P: rdf.FcrepoHasVersions, O: rdf.IRI(rdf.ResURI(uid + "/" + rdf.VersionsSegment))},
	}, layout.ModifyOptions{Timestamp: now}); err != nil {
		return "", err
	}

	m.Changelog.Append(eventFor(eventVersionCreated, uid, []string{verLabel}, "", nil, nil))
	return verLabel, nil
}

// GetVersion returns the snapshot graph for a resource version named
// by the label CreateVersion returned.
func (m *Model) GetVersion(txn *store.Txn, uid, verLabel string) (layout.Graph, error) {
	full := uid + "/" + rdf.VersionsSegment + "/" + verLabel
	ctx := rdf.GraphHist(full)
	trps, err := txn.Triples(store.Pattern{C: &ctx})
	if err != nil {
		return layout.Graph{}, err
	}
	if len(trps) == 0 {
		return layout.Graph{}, &apierr.ResourceNotExists{UID: full}
	}
	return layout.Graph{Subject: rdf.IRI(rdf.ResURI(full)), Triples: trps}, nil
}

// RevertToVersion optionally snapshots the current state, then
// replaces the live resource's non-server-managed triples with the
// version's (§4.6 Versioning, revert).
func (m *Model) RevertToVersion(txn *store.Txn, uid, verLabel string, snapshotCurrent bool, now time.Time) error {
	if snapshotCurrent {
		if _, err := m.CreateVersion(txn, uid, "", now); err != nil {
			return err
		}
	}

	ver, err := m.GetVersion(txn, uid, verLabel)
	if err != nil {
		return err
	}

	live, err := m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: false, Strict: true})
	if err != nil {
		return err
	}

	liveSubject := rdf.IRI(rdf.ResURI(uid))
	var removeSet []rdf.Triple
	for _, t := range live.Triples {
		if t.S == liveSubject && !IsServerManagedPredicate(t.P) && t.P != rdf.RDFType {
			removeSet = append(removeSet, t)
		}
	}

	var addSet []rdf.Triple
	versionSubject := rdf.IRI(rdf.ResURI(uid + "/" + rdf.VersionsSegment + "/" + verLabel))
	for _, t := range ver.Triples {
		if t.S != versionSubject {
			continue
		}
		if IsServerManagedPredicate(t.P) || t.P == rdf.RDFType {
			continue
		}
		addSet = append(addSet, rdf.Triple{S: liveSubject, P: t.P, O: t.O})
	}

	if err := m.Layout.Modify(txn, uid, removeSet, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
		return err
	}
	m.Changelog.Append(eventFor(eventVersionReverted, uid, []string{verLabel}, "", removeSet, addSet))
	return nil
}

func (m *Model) snapshotExists(txn *store.Txn, verUID string) (bool, error) {
	ctx := rdf.GraphHist(verUID)
	trps, err := txn.Triples(store.Pattern{C: &ctx})
	if err != nil {
		return false, err
	}
	return len(trps) > 0, nil
}
