package model

import "github.com/fcrepo-go/lsup/pkg/rdf"

// LdpType is the tagged enum of LDP resource variants (§4.6, §9
// "dynamic dispatch over LDP variants").
type LdpType int

const (
	RdfSource LdpType = iota
	BasicContainer
	DirectContainer
	IndirectContainer
	NonRdfSource
	Version
	Pairtree
	Tombstone
)

func (k LdpType) IsContainer() bool {
	return k == BasicContainer || k == DirectContainer || k == IndirectContainer
}

func (k LdpType) String() string {
	switch k {
	case RdfSource:
		return "RDFSource"
	case BasicContainer:
		return "BasicContainer"
	case DirectContainer:
		return "DirectContainer"
	case IndirectContainer:
		return "IndirectContainer"
	case NonRdfSource:
		return "NonRDFSource"
	case Version:
		return "Version"
	case Pairtree:
		return "Pairtree"
	case Tombstone:
		return "Tombstone"
	default:
		return "Unknown"
	}
}

// BaseTypes returns the rdf:type triples every live resource of kind
// k carries in its admin graph, mirroring Ldpr.base_types plus the
// variant-specific LDP type.
func (k LdpType) BaseTypes() []rdf.Term {
	base := []rdf.Term{rdf.LDPResource, rdf.LDPRDFSource}
	switch k {
	case BasicContainer:
		return append(base, rdf.LDPContainer, rdf.LDPBasicContainer)
	case DirectContainer:
		return append(base, rdf.LDPContainer, rdf.LDPDirectContainer)
	case IndirectContainer:
		return append(base, rdf.LDPContainer, rdf.LDPIndirectContainer)
	case NonRdfSource:
		return []rdf.Term{rdf.LDPResource, rdf.LDPNonRDFSource}
	case Version:
		return []rdf.Term{rdf.LDPResource, rdf.LDPRDFSource, rdf.FcrepoVersion}
	case Pairtree:
		return []rdf.Term{rdf.LDPResource, rdf.FcrepoPairtree}
	default:
		return base
	}
}

// existingIsNonRdfSource reports whether the stored admin triples for
// subject already declare it an LDP-NR, used by CreateOrReplace to
// reject a replace that would flip a resource between LDP-NR and
// LDP-RS (§7 IncompatibleLdpType) — a distinction no amount of
// re-PUTting the description can cross, since the two keep entirely
// different server-managed bookkeeping (digest/size/mime vs none).
func existingIsNonRdfSource(triples []rdf.Triple, subject rdf.Term) bool {
	for _, t := range triples {
		if t.S == subject && t.P == rdf.RDFType && t.O == rdf.LDPNonRDFSource {
			return true
		}
	}
	return false
}

// Handling controls how a create/replace/update call reacts to
// server-managed terms in a client payload (§4.6).
type Handling int

const (
	Strict Handling = iota
	Lenient
)

// serverManagedPredicates are predicates a client may never set
// directly (srv_mgd_predicates).
var serverManagedPredicates = map[string]bool{
	rdf.NsFcrepo + "created":        true,
	rdf.NsFcrepo + "createdBy":      true,
	rdf.NsFcrepo + "hasParent":      true,
	rdf.NsFcrepo + "lastModified":   true,
	rdf.NsFcrepo + "lastModifiedBy": true,
	rdf.NsIana + "describedBy":      true,
	rdf.NsLDP + "contains":          true,
	rdf.NsPremis + "hasMessageDigest": true,
	rdf.NsPremis + "hasSize":          true,
}

// serverManagedTypes are rdf:type objects a client may never assert
// directly (srv_mgd_types).
var serverManagedTypes = map[string]bool{
	rdf.NsFcrepo + "Binary":         true,
	rdf.NsFcrepo + "Container":      true,
	rdf.NsFcrepo + "Pairtree":       true,
	rdf.NsFcrepo + "Resource":       true,
	rdf.NsFcrepo + "Version":        true,
	rdf.NsLDP + "BasicContainer":    true,
	rdf.NsLDP + "Container":         true,
	rdf.NsLDP + "DirectContainer":   true,
	rdf.NsLDP + "IndirectContainer": true,
	rdf.NsLDP + "NonRDFSource":      true,
	rdf.NsLDP + "RDFSource":         true,
	rdf.NsLDP + "Resource":          true,
}

// smtAllowOnCreate exempts DirectContainer/IndirectContainer type
// declarations from the strict ban during creation (§4.6).
var smtAllowOnCreate = map[string]bool{
	rdf.NsLDP + "DirectContainer":   true,
	rdf.NsLDP + "IndirectContainer": true,
}

// deletePredsOnReplace are server-managed predicates stripped from a
// resource's admin graph on full replacement, to be recomputed from
// the new payload (§4.6 step 4).
var deletePredsOnReplace = map[string]bool{
	rdf.NsEbucore + "hasMimeType":     true,
	rdf.NsFcrepo + "lastModified":     true,
	rdf.NsFcrepo + "lastModifiedBy":   true,
	rdf.NsPremis + "hasSize":          true,
	rdf.NsPremis + "hasMessageDigest": true,
}

// ignoreVersionPredicates are predicates that do not get copied into
// a version snapshot (_ignore_version_preds).
var ignoreVersionPredicates = map[string]bool{
	rdf.NsFcrepo + "hasParent":        true,
	rdf.NsFcrepo + "hasVersions":      true,
	rdf.NsFcrepo + "hasVersion":       true,
	rdf.NsPremis + "hasMessageDigest": true,
	rdf.NsLDP + "contains":            true,
}

// ignoreVersionTypes are rdf:type objects that do not get copied into
// a version snapshot (_ignore_version_types).
var ignoreVersionTypes = map[string]bool{
	rdf.NsFcrepo + "Binary":         true,
	rdf.NsFcrepo + "Container":      true,
	rdf.NsFcrepo + "Pairtree":       true,
	rdf.NsFcrepo + "Resource":       true,
	rdf.NsFcrepo + "Version":        true,
	rdf.NsLDP + "BasicContainer":    true,
	rdf.NsLDP + "Container":         true,
	rdf.NsLDP + "DirectContainer":   true,
	rdf.NsLDP + "Resource":          true,
	rdf.NsLDP + "RDFSource":         true,
	rdf.NsLDP + "NonRDFSource":      true,
}

// IsServerManagedPredicate reports whether p is a predicate a client
// payload may never set directly.
func IsServerManagedPredicate(p rdf.Term) bool {
	return serverManagedPredicates[p.Value]
}

// IsServerManagedType reports whether o is an rdf:type object a
// client payload may never assert directly, given that the resource
// is being created (the DC/IC exemption only applies on create).
func IsServerManagedType(o rdf.Term, onCreate bool) bool {
	if !serverManagedTypes[o.Value] {
		return false
	}
	if onCreate && smtAllowOnCreate[o.Value] {
		return false
	}
	return true
}
