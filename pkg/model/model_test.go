package model

import (
	"testing"
	"time"

	"github.com/fcrepo-go/lsup/pkg/config"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *store.Environment) {
	t.Helper()
	env, err := store.Open(t.TempDir(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })

	cfg := config.Default()
	cfg.ReferentialIntegrity = config.RefIntLenient
	m := New(layout.New(), events.NewChangelog(), cfg)
	return m, env
}

func txnFor(t *testing.T, env *store.Environment) *store.Txn {
	t.Helper()
	txn, err := env.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() {
		txn.Abort()
	})
	return txn
}

func imrTriples(t *testing.T, m *Model, txn *store.Txn, uid string) []rdf.Triple {
	t.Helper()
	g, err := m.Layout.GetIMR(txn, uid, layout.IMROptions{InclChildren: true, Strict: true})
	require.NoError(t, err)
	return g.Triples
}

func hasTriple(triples []rdf.Triple, s, p, o rdf.Term) bool {
	for _, t := range triples {
		if t.S == s && t.P == p && t.O == o {
			return true
		}
	}
	return false
}

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
