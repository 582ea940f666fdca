package metrics

import (
	"testing"

	"github.com/fcrepo-go/lsup/pkg/binstore"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectorSamplesStoreAndBinStore(t *testing.T) {
	env, err := store.Open(t.TempDir(), store.Options{})
	require.NoError(t, err)
	defer env.Close()

	txn, err := env.Begin(true)
	require.NoError(t, err)
	_, err = txn.Intern(rdf.IRI("info:fcres/a"))
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	bin, err := binstore.Open(t.TempDir(), binstore.Options{})
	require.NoError(t, err)

	c := NewCollector(env, bin)
	c.collect()

	require.GreaterOrEqual(t, testutil.ToFloat64(TermsTotal), float64(1))
}

func TestCollectorToleratesNilCollaborators(t *testing.T) {
	c := NewCollector(nil, nil)
	c.collect() // must not panic
}
