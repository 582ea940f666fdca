package model

import (
	"testing"
	"time"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/sparqlupdate"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUpdateStrRewritesEmptyAndFragmentRefs(t *testing.T) {
	out := NormalizeUpdateStr("/a", `DELETE { <> <urn:p> ?o . <#x> <urn:q> ?o . } WHERE { <> <urn:p> ?o . <#x> <urn:q> ?o . }`)
	uri := rdf.ResURI("/a")
	require.Contains(t, out, "<"+uri+">")
	require.Contains(t, out, "<"+uri+"#x>")
	require.NotContains(t, out, "<>")
	require.NotContains(t, out, "<#x>")
}

func TestUpdateAppliesInsertDataAndStampsLastModified(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)

	g, err := m.Update(txn, "/a", `INSERT DATA { <> <urn:example:title> "hello" . }`, Lenient, sparqlupdate.Subset{}, fixedNow.Add(time.Minute))
	require.NoError(t, err)

	subject := rdf.IRI(rdf.ResURI("/a"))
	require.True(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("hello")))
	require.True(t, hasTriple(g.Triples, subject, rdf.FcrepoLastModified, rdf.PlainLiteral(fixedNow.Add(time.Minute).UTC().Format(time.RFC3339Nano))))
}

func TestUpdateDeleteInsertWhereRewritesValue(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("old")},
		},
		Actor: "alice",
	}, fixedNow)
	require.NoError(t, err)

	query := `DELETE { <> <urn:example:title> ?o . } INSERT { <> <urn:example:title> "new" . } WHERE { <> <urn:example:title> ?o . }`
	g, err := m.Update(txn, "/a", query, Lenient, sparqlupdate.Subset{}, fixedNow.Add(time.Minute))
	require.NoError(t, err)

	subject := rdf.IRI(rdf.ResURI("/a"))
	require.False(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("old")))
	require.True(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("new")))
}

func TestUpdateRejectsServerManagedInsertUnderStrict(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)

	_, err = m.Update(txn, "/a", `INSERT DATA { <> <http://fedora.info/definitions/v4/repository#createdBy> "forged" . }`, Strict, sparqlupdate.Subset{}, fixedNow.Add(time.Minute))
	require.Error(t, err)
	var smtErr *apierr.ServerManagedTerm
	require.ErrorAs(t, err, &smtErr)
}

func TestUpdateSilentlyStripsServerManagedUnderLenient(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)

	g, err := m.Update(txn, "/a", `INSERT DATA { <> <urn:example:ok> "1" . <> a <http://www.w3.org/ns/ldp#DirectContainer> . }`, Lenient, sparqlupdate.Subset{}, fixedNow.Add(time.Minute))
	require.NoError(t, err)

	subject := rdf.IRI(rdf.ResURI("/a"))
	require.True(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:ok"), rdf.PlainLiteral("1")))
}

func TestDeltaUpdateExpandsWildcardPositions(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("one")},
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("two")},
		},
		Actor: "alice",
	}, fixedNow)
	require.NoError(t, err)

	subject := rdf.IRI(rdf.ResURI("/a"))
	removePattern := []rdf.Triple{
		{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.Term{}},
	}
	g, err := m.DeltaUpdate(txn, "/a", removePattern, nil, Lenient, fixedNow.Add(time.Minute))
	require.NoError(t, err)

	require.False(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("one")))
	require.False(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("two")))
}

func TestDeltaUpdateAppliesAddSet(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)

	subject := rdf.IRI(rdf.ResURI("/a"))
	addSet := []rdf.Triple{{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("added")}}
	g, err := m.DeltaUpdate(txn, "/a", nil, addSet, Lenient, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, hasTriple(g.Triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("added")))
}
