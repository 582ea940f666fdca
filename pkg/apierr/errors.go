// Package apierr defines the sum-typed error kinds surfaced at the
// resource API boundary (§7): existence, validation, integrity, and
// store-level errors, each matchable with errors.As by callers that
// need to map them onto HTTP status codes.
package apierr

import (
	"errors"
	"fmt"
	"time"
)

// ResourceNotExists is returned when an operation addresses a UID that
// has never been created.
type ResourceNotExists struct {
	UID string
}

func (e *ResourceNotExists) Error() string {
	return fmt.Sprintf("apierr: resource %q does not exist", e.UID)
}

// ResourceExists is returned by create when the UID is already taken
// by a live resource.
type ResourceExists struct {
	UID string
}

func (e *ResourceExists) Error() string {
	return fmt.Sprintf("apierr: resource %q already exists", e.UID)
}

// Tombstone is returned when an operation addresses a buried resource;
// only resurrect and forget are valid against it.
type Tombstone struct {
	UID       string
	DeletedAt time.Time
}

func (e *Tombstone) Error() string {
	return fmt.Sprintf("apierr: resource %q is a tombstone (deleted at %s)", e.UID, e.DeletedAt.Format(time.RFC3339))
}

// InvalidResource is returned when a payload cannot be parsed or
// fails basic shape validation. Single-subject violations are reported
// as SingleSubject instead.
type InvalidResource struct {
	UID    string
	Reason string
}

func (e *InvalidResource) Error() string {
	return fmt.Sprintf("apierr: invalid resource %q: %s", e.UID, e.Reason)
}

// IncompatibleLdpType is returned when an operation is attempted
// against an LDP type that does not support it (e.g. SPARQL-Update
// against a NonRDFSource's description is fine, but against its
// binary content is not).
type IncompatibleLdpType struct {
	UID      string
	Got      string
	Expected string
}

func (e *IncompatibleLdpType) Error() string {
	return fmt.Sprintf("apierr: resource %q has incompatible LDP type %s, expected %s", e.UID, e.Got, e.Expected)
}

// SingleSubject is returned when strict single-subject enforcement is
// active (see DESIGN.md) and a payload asserts triples about a
// subject other than the resource's own URI.
type SingleSubject struct {
	UID     string
	Subject string
}

func (e *SingleSubject) Error() string {
	return fmt.Sprintf("apierr: resource %q: payload asserts triples about foreign subject %s", e.UID, e.Subject)
}

// ServerManagedTermPosition identifies where a rejected server-managed
// term appeared.
type ServerManagedTermPosition int

const (
	// PositionPredicate marks a server-managed predicate.
	PositionPredicate ServerManagedTermPosition = iota
	// PositionType marks a server-managed rdf:type object.
	PositionType
)

// ServerManagedTerm is returned, under strict handling, when a client
// payload asserts or removes a server-managed predicate or type.
type ServerManagedTerm struct {
	UID      string
	Terms    []string
	Position ServerManagedTermPosition
}

func (e *ServerManagedTerm) Error() string {
	return fmt.Sprintf("apierr: resource %q: payload contains server-managed terms %v", e.UID, e.Terms)
}

// RefIntViolation is returned, under strict referential-integrity
// policy, when a payload's object IRI names a repository resource
// that does not exist.
type RefIntViolation struct {
	UID string
	Obj string
}

func (e *RefIntViolation) Error() string {
	return fmt.Sprintf("apierr: resource %q: object %s does not reference an existing resource", e.UID, e.Obj)
}

// ChecksumValidation is returned when a binary's recorded digest does
// not match the digest recomputed from its stored content (the fixity
// check).
type ChecksumValidation struct {
	UID      string
	Expected string
	Got      string
}

func (e *ChecksumValidation) Error() string {
	return fmt.Sprintf("apierr: resource %q: checksum mismatch, expected %s got %s", e.UID, e.Expected, e.Got)
}

// MapFull is a transient store error: the memory-mapped environment
// has exhausted its configured size.
type MapFull struct {
	Env string
}

func (e *MapFull) Error() string {
	return fmt.Sprintf("apierr: store environment %q is full", e.Env)
}

// ReaderSlotExhausted is a transient store error: no more read
// transactions can be opened until an existing one closes.
type ReaderSlotExhausted struct{}

func (e *ReaderSlotExhausted) Error() string {
	return "apierr: no free reader slots"
}

// Corruption is a fatal store error: the data and index environments
// have diverged, or a term/index invariant has been violated. Per
// §7, the process should not continue serving after this; the caller
// is expected to log it and abort the process rather than retry.
type Corruption struct {
	Detail string
}

func (e *Corruption) Error() string {
	return fmt.Sprintf("apierr: store corruption detected: %s", e.Detail)
}

// IsNotFound reports whether err is a ResourceNotExists, which HTTP
// layers map to 404.
func IsNotFound(err error) bool {
	var e *ResourceNotExists
	return errors.As(err, &e)
}

// IsTombstone reports whether err is a Tombstone, which HTTP layers
// map to 410 Gone.
func IsTombstone(err error) bool {
	var e *Tombstone
	return errors.As(err, &e)
}

// IsTransient reports whether err is a store error the caller may
// reasonably retry at a higher level (never inside the core itself,
// per §7's no-silent-retry rule).
func IsTransient(err error) bool {
	var mf *MapFull
	var rs *ReaderSlotExhausted
	return errors.As(err, &mf) || errors.As(err, &rs)
}

// IsFatal reports whether err should abort the process after logging.
func IsFatal(err error) bool {
	var c *Corruption
	return errors.As(err, &c)
}
