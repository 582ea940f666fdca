package store

import (
	"testing"

	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/stretchr/testify/require"
)

func TestRebuildIndicesReproducesQueryResultsAfterClearing(t *testing.T) {
	env, err := Open(t.TempDir(), Options{})
	require.NoError(t, err)
	defer env.Close()

	ctx := rdf.IRI("urn:graph:1")
	quads := []rdf.Quad{
		{S: rdf.IRI("urn:a"), P: rdf.IRI("urn:p"), O: rdf.PlainLiteral("1"), C: ctx},
		{S: rdf.IRI("urn:a"), P: rdf.IRI("urn:q"), O: rdf.IRI("urn:b"), C: ctx},
		{S: rdf.IRI("urn:b"), P: rdf.IRI("urn:p"), O: rdf.PlainLiteral("2"), C: ctx},
	}

	txn, err := env.Begin(true)
	require.NoError(t, err)
	for _, q := range quads {
		require.NoError(t, txn.AddQuad(q))
	}
	require.NoError(t, txn.Commit())

	txn, err = env.Begin(true)
	require.NoError(t, err)
	n, err := txn.RebuildIndices()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, txn.Commit())

	txn, err = env.Begin(false)
	require.NoError(t, err)
	defer txn.Abort()

	subj := rdf.IRI("urn:a")
	got, err := txn.Quads(Pattern{S: &subj})
	require.NoError(t, err)
	require.Len(t, got, 2)

	pred := rdf.IRI("urn:p")
	got, err = txn.Quads(Pattern{P: &pred})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = txn.Quads(Pattern{C: &ctx})
	require.NoError(t, err)
	require.Len(t, got, 3)
}
