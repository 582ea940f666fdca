// Package repo is the resource API facade (§6.1): it ties the store
// environment, resource-centric layout, LDP resource model, binary
// store, and changelog broker together behind the transaction and
// timestamp discipline of §4.8. Every write entry point opens a
// single write transaction, stamps one logical timestamp for every
// triple the operation touches, and on success drains the changelog
// to the event broker; on any error it aborts the transaction and
// lets the partial-failure policy of §7 hold (nothing is visible).
package repo

import (
	"fmt"
	"io"
	"time"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/binstore"
	"github.com/fcrepo-go/lsup/pkg/config"
	"github.com/fcrepo-go/lsup/pkg/events"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/log"
	"github.com/fcrepo-go/lsup/pkg/metrics"
	"github.com/fcrepo-go/lsup/pkg/model"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/fcrepo-go/lsup/pkg/sparqlupdate"
	"github.com/fcrepo-go/lsup/pkg/store"
	"github.com/rs/zerolog"
)

// Repo is the constructed, ready-to-use resource API. It holds no
// global mutable singleton (§9): every collaborator is an explicit
// field built once at startup and passed in.
type Repo struct {
	Env    *store.Environment
	Layout *layout.Layout
	Model  *model.Model
	Bin    *binstore.Store
	Broker *events.Broker
	Cfg    config.Config
	Eval   sparqlupdate.Evaluator

	log zerolog.Logger
}

// New constructs a Repo over already-open collaborators. The caller
// owns opening env/bin and starting broker; Repo never constructs its
// own layout (§9 "cyclic references between resource model and
// layout").
func New(env *store.Environment, bin *binstore.Store, broker *events.Broker, cfg config.Config) *Repo {
	l := layout.New()
	return &Repo{
		Env:    env,
		Layout: l,
		Model:  model.New(l, events.NewChangelog(), cfg),
		Bin:    bin,
		Broker: broker,
		Cfg:    cfg,
		Eval:   sparqlupdate.Subset{},
		log:    log.WithComponent("repo"),
	}
}

// RepresentationOptions controls how much of a resource Get composes,
// mirroring layout.IMROptions at the API boundary.
type RepresentationOptions = layout.IMROptions

// Exists reports whether uid names a live resource.
func (r *Repo) Exists(uid string) (exists bool, err error) {
	err = r.readTxn(func(txn *store.Txn) error {
		exists, err = r.Layout.Exists(txn, uid)
		return err
	})
	return exists, err
}

// Get composes and returns a resource's representation.
func (r *Repo) Get(uid string, opts RepresentationOptions) (g layout.Graph, err error) {
	opts.Strict = true
	err = r.readTxn(func(txn *store.Txn) error {
		g, err = r.Layout.GetIMR(txn, uid, opts)
		return err
	})
	return g, err
}

// GetMetadata returns only a resource's admin graph.
func (r *Repo) GetMetadata(uid string) (g layout.Graph, err error) {
	err = r.readTxn(func(txn *store.Txn) error {
		g, err = r.Layout.GetMetadata(txn, uid, true)
		return err
	})
	return g, err
}

// Create mints a new child UID under parentUID (honoring slug if
// given and free) and creates it with in, returning the new UID.
func (r *Repo) Create(parentUID, slug string, in model.CreateOrReplaceInput) (newUID string, err error) {
	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		newUID, err = r.Model.MintUID(txn, parentUID, slug)
		if err != nil {
			return err
		}
		_, err = r.Model.CreateOrReplace(txn, newUID, in, now)
		return err
	})
	timer.ObserveDuration(metrics.ResourceCreateDuration)
	return newUID, err
}

// CreateOrReplace creates uid if absent, or replaces it if live, per
// the eight-step algorithm of §4.6.
func (r *Repo) CreateOrReplace(uid string, in model.CreateOrReplaceInput) (result model.Result, err error) {
	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		result, err = r.Model.CreateOrReplace(txn, uid, in, now)
		return err
	})
	timer.ObserveDuration(metrics.ResourceCreateDuration)
	return result, err
}

// CreateNonRDFSource streams body into the binary store and creates
// or replaces uid as an LDP-NR pointing at the persisted digest. The
// binary is persisted before the metadata transaction opens, so a
// failed persist returns without any RDF write.
func (r *Repo) CreateNonRDFSource(uid, mimeType string, body io.Reader, actor string) (result model.Result, err error) {
	digest, size, err := r.Bin.Persist(body)
	if err != nil {
		return model.Result{}, fmt.Errorf("repo: persist binary for %s: %w", uid, err)
	}

	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		result, err = r.Model.CreateOrReplace(txn, uid, model.CreateOrReplaceInput{
			Type:     model.NonRdfSource,
			MimeType: mimeType,
			Digest:   digest,
			Size:     size,
			Actor:    actor,
			Handling: model.Lenient,
		}, now)
		return err
	})
	timer.ObserveDuration(metrics.ResourceCreateDuration)
	if err != nil {
		// The binary is already durably persisted and content-addressed;
		// per §4.5 dedup semantics, an orphaned digest costs no extra
		// space once another resource references the same content, and
		// deleting it here would race a concurrent reader of the same
		// digest. §7 only requires the metadata transaction itself be
		// all-or-nothing, which writeTxn already guarantees.
		return model.Result{}, err
	}
	return result, nil
}

// Update runs a SPARQL-Update request against uid.
func (r *Repo) Update(uid, sparqlStr string, handling model.Handling) (g layout.Graph, err error) {
	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		g, err = r.Model.Update(txn, uid, sparqlStr, handling, r.Eval, now)
		return err
	})
	timer.ObserveDuration(metrics.ResourceUpdateDuration)
	return g, err
}

// UpdateDelta applies an explicit remove/add triple set, with
// wildcard expansion in the remove set (§6.1 update_delta).
func (r *Repo) UpdateDelta(uid string, removeSet, addSet []rdf.Triple, handling model.Handling) (g layout.Graph, err error) {
	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		g, err = r.Model.DeltaUpdate(txn, uid, removeSet, addSet, handling, now)
		return err
	})
	timer.ObserveDuration(metrics.ResourceUpdateDuration)
	return g, err
}

// Delete buries (leaveTombstone=true) or forgets uid.
func (r *Repo) Delete(uid string, leaveTombstone bool) error {
	timer := metrics.NewTimer()
	err := r.writeTxn(func(txn *store.Txn, now time.Time) error {
		return r.Model.Delete(txn, uid, leaveTombstone, now)
	})
	timer.ObserveDuration(metrics.ResourceDeleteDuration)
	return err
}

// Resurrect reverses a bury.
func (r *Repo) Resurrect(uid string) error {
	return r.writeTxn(func(txn *store.Txn, now time.Time) error {
		return r.Model.Resurrect(txn, uid, now)
	})
}

// CreateVersion mints and stores a version snapshot of uid.
func (r *Repo) CreateVersion(uid, slug string) (verUID string, err error) {
	timer := metrics.NewTimer()
	err = r.writeTxn(func(txn *store.Txn, now time.Time) error {
		verUID, err = r.Model.CreateVersion(txn, uid, slug, now)
		return err
	})
	timer.ObserveDuration(metrics.VersionCreateDuration)
	return verUID, err
}

// GetVersion returns a stored version snapshot.
func (r *Repo) GetVersion(uid, verUID string) (g layout.Graph, err error) {
	err = r.readTxn(func(txn *store.Txn) error {
		g, err = r.Model.GetVersion(txn, uid, verUID)
		return err
	})
	return g, err
}

// RevertToVersion replaces uid's live state with a stored version.
func (r *Repo) RevertToVersion(uid, verUID string, snapshotCurrent bool) error {
	return r.writeTxn(func(txn *store.Txn, now time.Time) error {
		return r.Model.RevertToVersion(txn, uid, verUID, snapshotCurrent, now)
	})
}

// IntegrityCheck runs the referential-integrity scan over the whole
// store and returns every violating triple (§4.4, §8 scenario 6).
func (r *Repo) IntegrityCheck() (violations []rdf.Triple, err error) {
	err = r.readTxn(func(txn *store.Txn) error {
		violations, err = r.Layout.FindRefIntViolations(txn)
		return err
	})
	return violations, err
}

// readTxn runs fn inside a read-only transaction, always aborting
// afterward since a read transaction has nothing to commit.
func (r *Repo) readTxn(fn func(txn *store.Txn) error) error {
	txn, err := r.Env.Begin(false)
	if err != nil {
		return fmt.Errorf("repo: begin read txn: %w", err)
	}
	defer txn.Abort()
	return fn(txn)
}

// writeTxn runs fn inside a write transaction, capturing a single
// logical timestamp at begin time and propagating it to fn so every
// triple the operation stamps shares it (§4.8). On fn's success it
// commits and drains+publishes the changelog; on any error, including
// one raised by commit itself, it aborts and the caller observes no
// partial effect.
func (r *Repo) writeTxn(fn func(txn *store.Txn, now time.Time) error) (err error) {
	start := time.Now()
	now := start.UTC()

	txn, err := r.Env.Begin(true)
	if err != nil {
		return fmt.Errorf("repo: begin write txn: %w", err)
	}

	defer func() {
		result := "commit"
		if err != nil {
			result = "abort"
			txn.Abort()
			// Discard any events the failed operation queued: per §4.8
			// they are only ever drained after a successful commit, and
			// per §7 a rolled-back operation must have no observable
			// effect, including emitted lifecycle events.
			r.Model.Changelog.Drain()
		}
		metrics.TxnTotal.WithLabelValues(result).Inc()
		metrics.TxnDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if err = fn(txn, now); err != nil {
		return err
	}
	if err = txn.Commit(); err != nil {
		if apierr.IsFatal(err) {
			r.log.Error().Err(err).Msg("fatal store corruption on commit")
		}
		return err
	}

	r.drainChangelog()
	return nil
}

func (r *Repo) drainChangelog() {
	drained := r.Model.Changelog.Drain()
	if len(drained) == 0 {
		return
	}
	for _, e := range drained {
		metrics.ChangelogEventsTotal.WithLabelValues(string(e.Type)).Inc()
	}
	if r.Broker != nil {
		r.Broker.PublishAll(drained)
	}
}
