package model

import (
	"testing"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/stretchr/testify/require"
)

func TestCreateOrReplaceCreatesRootLevelResource(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	res, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("hello")},
		},
		Actor: "alice",
	}, fixedNow)
	require.NoError(t, err)
	require.True(t, res.Created)

	triples := imrTriples(t, m, txn, "/a")
	subject := rdf.IRI(rdf.ResURI("/a"))
	require.True(t, hasTriple(triples, subject, rdf.RDFType, rdf.LDPBasicContainer))
	require.True(t, hasTriple(triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("hello")))
	require.True(t, hasTriple(triples, subject, rdf.FcrepoCreatedBy, rdf.PlainLiteral("alice")))
}

func TestCreateOrReplaceSecondCallReplaces(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("first")},
		},
		Actor: "alice",
	}, fixedNow)
	require.NoError(t, err)

	res, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("second")},
		},
		Actor: "bob",
	}, fixedNow.Add(1))
	require.NoError(t, err)
	require.False(t, res.Created)

	triples := imrTriples(t, m, txn, "/a")
	subject := rdf.IRI(rdf.ResURI("/a"))
	require.False(t, hasTriple(triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("first")))
	require.True(t, hasTriple(triples, subject, rdf.IRI("urn:example:title"), rdf.PlainLiteral("second")))
	// fcrepo:createdBy is protected across replace.
	require.True(t, hasTriple(triples, subject, rdf.FcrepoCreatedBy, rdf.PlainLiteral("alice")))
}

func TestCreateOrReplaceRejectsServerManagedTermInStrictMode(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.FcrepoCreatedBy, O: rdf.PlainLiteral("forged")},
		},
		Handling: Strict,
		Actor:    "alice",
	}, fixedNow)
	require.Error(t, err)
	var smtErr *apierr.ServerManagedTerm
	require.ErrorAs(t, err, &smtErr)
}

func TestCreateOrReplaceRejectsForeignSubject(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/other")), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("hello")},
		},
		Actor: "alice",
	}, fixedNow)
	require.Error(t, err)
	var ssErr *apierr.SingleSubject
	require.ErrorAs(t, err, &ssErr)
}

func TestCreateOrReplaceAllowsFragmentSubject(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/a", CreateOrReplaceInput{
		Type: BasicContainer,
		Triples: []rdf.Triple{
			{S: rdf.IRI(rdf.ResURI("/a") + "#h"), P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("hash")},
		},
		Actor: "alice",
	}, fixedNow)
	require.NoError(t, err)
}

func TestCreateOrReplaceRejectsFlippingNonRdfSourceToRdfSource(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/bin", CreateOrReplaceInput{
		Type:     NonRdfSource,
		MimeType: "text/plain",
		Digest:   "urn:sha256:abc",
		Size:     3,
		Actor:    "alice",
		Handling: Lenient,
	}, fixedNow)
	require.NoError(t, err)

	_, err = m.CreateOrReplace(txn, "/bin", CreateOrReplaceInput{
		Type:  BasicContainer,
		Actor: "alice",
	}, fixedNow.Add(1))
	require.Error(t, err)
	var incompatErr *apierr.IncompatibleLdpType
	require.ErrorAs(t, err, &incompatErr)
}

func TestCreateOrReplacePopulatesContainment(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/parent", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)
	_, err = m.CreateOrReplace(txn, "/parent/child", CreateOrReplaceInput{Type: BasicContainer, Actor: "alice"}, fixedNow)
	require.NoError(t, err)

	triples := imrTriples(t, m, txn, "/parent")
	require.True(t, hasTriple(triples, rdf.IRI(rdf.ResURI("/parent")), rdf.LDPContains, rdf.IRI(rdf.ResURI("/parent/child"))))
}

func TestMintUIDUsesSlugWhenAvailable(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	uid, err := m.MintUID(txn, "/parent", "child")
	require.NoError(t, err)
	require.Equal(t, "/parent/child", uid)
}

func TestMintUIDFallsBackToUUIDOnCollision(t *testing.T) {
	m, env := newTestModel(t)
	txn := txnFor(t, env)

	_, err := m.CreateOrReplace(txn, "/parent/child", CreateOrReplaceInput{Type: BasicContainer, Actor: "a"}, fixedNow)
	require.NoError(t, err)

	uid, err := m.MintUID(txn, "/parent", "child")
	require.NoError(t, err)
	require.NotEqual(t, "/parent/child", uid)
	require.Contains(t, uid, "/parent/")
}

func TestParentUID(t *testing.T) {
	require.Equal(t, "", ParentUID("/"))
	require.Equal(t, "/", ParentUID("/a"))
	require.Equal(t, "/a", ParentUID("/a/b"))
}
