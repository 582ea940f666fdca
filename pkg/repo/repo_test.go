package repo

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fcrepo-go/lsup/pkg/binstore"
	"github.com/fcrepo-go/lsup/pkg/config"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/model"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/store"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	env, err := store.Open(t.TempDir(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })

	bin, err := binstore.Open(t.TempDir(), binstore.Options{})
	require.NoError(t, err)

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	cfg := config.Default()
	cfg.ReferentialIntegrity = config.RefIntLenient
	return New(env, bin, broker, cfg)
}

func TestRepoCreateMintsChildUID(t *testing.T) {
	r := newTestRepo(t)

	uid, err := r.Create("/", "things", model.CreateOrReplaceInput{
		Type:  model.BasicContainer,
		Actor: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, "/things", uid)

	exists, err := r.Exists(uid)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRepoCreateOrReplaceThenGetComposesGraph(t *testing.T) {
	r := newTestRepo(t)

	subject := rdf.IRI(rdf.ResURI("/a"))
	result, err := r.CreateOrReplace("/a", model.CreateOrReplaceInput{
		Type: model.BasicContainer,
		Triples: []rdf.Triple{
			{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("hello")},
		},
		Actor: "alice",
	})
	require.NoError(t, err)
	require.True(t, result.Created)

	g, err := r.Get("/a", RepresentationOptions{InclChildren: true})
	require.NoError(t, err)
	found := false
	for _, tr := range g.Triples {
		if tr.S == subject && tr.P == rdf.IRI("urn:example:title") && tr.O == rdf.PlainLiteral("hello") {
			found = true
		}
	}
	require.True(t, found)
}

func TestRepoCreateNonRDFSourcePersistsBinaryAndMetadata(t *testing.T) {
	r := newTestRepo(t)

	result, err := r.CreateNonRDFSource("/bin1", "text/plain", strings.NewReader("hello world"), "alice")
	require.NoError(t, err)
	require.True(t, result.Created)

	meta, err := r.GetMetadata("/bin1")
	require.NoError(t, err)
	subject := rdf.IRI(rdf.ResURI("/bin1"))
	var digest string
	for _, tr := range meta.Triples {
		if tr.S == subject && tr.P == rdf.PremisHasMessageDigest {
			digest = tr.O.Value
		}
	}
	require.NotEmpty(t, digest)

	ok, _, err := r.Bin.Fixity(digest)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRepoUpdateAndDeleteLifecycle(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.CreateOrReplace("/a", model.CreateOrReplaceInput{Type: model.BasicContainer, Actor: "alice"})
	require.NoError(t, err)

	g, err := r.Update("/a", `INSERT DATA { <> <urn:example:title> "hi" . }`, model.Lenient)
	require.NoError(t, err)
	subject := rdf.IRI(rdf.ResURI("/a"))
	require.Contains(t, g.Triples, rdf.Triple{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("hi")})

	g, err = r.UpdateDelta("/a", nil, []rdf.Triple{{S: subject, P: rdf.IRI("urn:example:extra"), O: rdf.PlainLiteral("x")}}, model.Lenient)
	require.NoError(t, err)
	require.Contains(t, g.Triples, rdf.Triple{S: subject, P: rdf.IRI("urn:example:extra"), O: rdf.PlainLiteral("x")})

	require.NoError(t, r.Delete("/a", true))
	exists, err := r.Exists("/a")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, r.Resurrect("/a"))
	exists, err = r.Exists("/a")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRepoVersionCreateGetRevert(t *testing.T) {
	r := newTestRepo(t)

	subject := rdf.IRI(rdf.ResURI("/a"))
	_, err := r.CreateOrReplace("/a", model.CreateOrReplaceInput{
		Type:    model.BasicContainer,
		Triples: []rdf.Triple{{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("v1")}},
		Actor:   "alice",
	})
	require.NoError(t, err)

	verUID, err := r.CreateVersion("/a", "v1")
	require.NoError(t, err)
	require.NotEmpty(t, verUID)

	_, err = r.CreateOrReplace("/a", model.CreateOrReplaceInput{
		Type:    model.BasicContainer,
		Triples: []rdf.Triple{{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("v2")}},
		Actor:   "alice",
	})
	require.NoError(t, err)

	snap, err := r.GetVersion("/a", verUID)
	require.NoError(t, err)
	verSubject := rdf.IRI(rdf.ResURI("/a/" + rdf.VersionsSegment + "/" + verUID))
	require.Contains(t, snap.Triples, rdf.Triple{S: verSubject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("v1")})

	require.NoError(t, r.RevertToVersion("/a", verUID, false))
	g, err := r.Get("/a", RepresentationOptions{})
	require.NoError(t, err)
	require.Contains(t, g.Triples, rdf.Triple{S: subject, P: rdf.IRI("urn:example:title"), O: rdf.PlainLiteral("v1")})
}

func TestRepoWriteTxnAbortsOnFailureLeavesNoTrace(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.CreateOrReplace("/a", model.CreateOrReplaceInput{
		Type:     model.BasicContainer,
		Triples:  []rdf.Triple{{S: rdf.IRI(rdf.ResURI("/a")), P: rdf.FcrepoCreatedBy, O: rdf.PlainLiteral("forged")}},
		Handling: model.Strict,
		Actor:    "alice",
	})
	require.Error(t, err)

	exists, err := r.Exists("/a")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWriteTxnDiscardsChangelogOnAbort(t *testing.T) {
	r := newTestRepo(t)

	// Simulate an operation that queues an event and then fails later
	// in the same transaction (e.g. the trailing GetIMR in Update/
	// DeltaUpdate erroring after Modify already appended to the
	// changelog).
	r.Model.Changelog.Append(events.Event{Type: events.EventResourceCreated, UID: "/leaked"})

	err := r.writeTxn(func(txn *store.Txn, now time.Time) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, r.Model.Changelog.Len(), "an aborted write must not leave events for the next commit to drain")

	// A subsequent successful write must only publish its own event,
	// not the one queued before the abort.
	uid, err := r.Create("/", "ok", model.CreateOrReplaceInput{Type: model.BasicContainer, Actor: "alice"})
	require.NoError(t, err)
	require.Equal(t, "/ok", uid)
	require.Equal(t, 0, r.Model.Changelog.Len())
}

func TestRepoIntegrityCheckFindsDanglingReference(t *testing.T) {
	r := newTestRepo(t)
	r.Cfg.ReferentialIntegrity = config.RefIntOff
	r.Model.Cfg.ReferentialIntegrity = config.RefIntOff

	subject := rdf.IRI(rdf.ResURI("/a"))
	_, err := r.CreateOrReplace("/a", model.CreateOrReplaceInput{
		Type:    model.BasicContainer,
		Triples: []rdf.Triple{{S: subject, P: rdf.IRI("urn:example:ref"), O: rdf.IRI(rdf.ResURI("/does-not-exist"))}},
		Actor:   "alice",
	})
	require.NoError(t, err)

	violations, err := r.IntegrityCheck()
	require.NoError(t, err)
	require.NotEmpty(t, violations)
}
