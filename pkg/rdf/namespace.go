package rdf

import "strings"

// Core namespace prefixes bound by every store, mirroring the
// repository's fixed vocabulary. User-bindable prefixes add to, and
// may override, anything not in this table.
const (
	NsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NsRDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	NsXSD      = "http://www.w3.org/2001/XMLSchema#"
	NsLDP      = "http://www.w3.org/ns/ldp#"
	NsFcrepo   = "http://fedora.info/definitions/v4/repository#"
	NsPremis   = "http://www.loc.gov/premis/rdf/v1#"
	NsIana     = "http://www.iana.org/assignments/relation/"
	NsWebac    = "http://www.w3.org/ns/auth/acl#"
	NsEbucore  = "http://www.ebu.ch/metadata/ontologies/ebucore/ebucore#"
	NsDCTerms  = "http://purl.org/dc/terms/"
	// NsFcres is the base of the internal resource URI scheme. The
	// original implementation disagreed with itself over info:fcres/
	// vs. urn:fcres:; this port settles on info:fcres, see DESIGN.md.
	NsFcres    = "info:fcres"
	NsFcsystem = "info:fcsystem/"

	// Per-resource graph namespaces (§3): each UID has a cluster of
	// four named graphs built by appending the UID to one of these.
	NsFcAdmin  = "info:fcadmin"
	NsFcMain   = "info:fcmain" // user-provided triples
	NsFcStruct = "info:fcstruct"
	NsFcHist   = "info:fchist"

	// VersionsSegment is the path segment separating a resource's UID
	// from its version UID, e.g. "/a/fcr:versions/v1".
	VersionsSegment = "fcr:versions"
)

// MetaRegistryGraph is the fixed graph recording, for every live
// resource graph, its primaryTopic, creation time and (for historic
// snapshots) version label (§3 meta-registry graph).
var MetaRegistryGraph = IRI("info:fcsystem/meta")

// HistRegistryGraph is MetaRegistryGraph's counterpart for historic
// version-snapshot graphs.
var HistRegistryGraph = IRI("info:fcsystem/histmeta")

// GraphAdmin returns the admin[uid] named-graph URI term.
func GraphAdmin(uid string) Term { return IRI(NsFcAdmin + uid) }

// GraphUser returns the user[uid] named-graph URI term.
func GraphUser(uid string) Term { return IRI(NsFcMain + uid) }

// GraphStruct returns the struct[uid] named-graph URI term.
func GraphStruct(uid string) Term { return IRI(NsFcStruct + uid) }

// GraphHist returns the hist[uid] named-graph URI term. Each version
// snapshot is its own hist graph, keyed by the version's UID
// (<uid>/fcr:versions/<label>).
func GraphHist(uid string) Term { return IRI(NsFcHist + uid) }

// CoreNamespaces is the fixed prefix -> namespace table installed in
// every newly bootstrapped store.
var CoreNamespaces = map[string]string{
	"rdf":     NsRDF,
	"rdfs":    NsRDFS,
	"xsd":     NsXSD,
	"ldp":     NsLDP,
	"fcrepo":  NsFcrepo,
	"premis":  NsPremis,
	"iana":    NsIana,
	"webac":   NsWebac,
	"ebucore": NsEbucore,
	"dcterms": NsDCTerms,
	"fcres":   NsFcres,
	"fcsys":   NsFcsystem,
}

// ResURI returns the internal repository URI for a resource UID, e.g.
// ResURI("/a/b") == "info:fcres/a/b".
func ResURI(uid string) string {
	return NsFcres + uid
}

// UIDFromURI reverses ResURI; it returns ok=false if uri is not a
// repository-internal resource URI.
func UIDFromURI(uri string) (uid string, ok bool) {
	if !strings.HasPrefix(uri, NsFcres) {
		return "", false
	}
	return strings.TrimPrefix(uri, NsFcres), true
}

// Well-known terms used throughout the layout and model packages.
var (
	RDFType               = IRI(NsRDF + "type")
	LDPResource           = IRI(NsLDP + "Resource")
	LDPRDFSource          = IRI(NsLDP + "RDFSource")
	LDPNonRDFSource       = IRI(NsLDP + "NonRDFSource")
	LDPContainer          = IRI(NsLDP + "Container")
	LDPBasicContainer     = IRI(NsLDP + "BasicContainer")
	LDPDirectContainer    = IRI(NsLDP + "DirectContainer")
	LDPIndirectContainer  = IRI(NsLDP + "IndirectContainer")
	LDPContains           = IRI(NsLDP + "contains")
	LDPMembershipResource = IRI(NsLDP + "membershipResource")
	LDPHasMemberRelation  = IRI(NsLDP + "hasMemberRelation")
	LDPInsertedContentRel = IRI(NsLDP + "insertedContentRelation")

	FcrepoCreated          = IRI(NsFcrepo + "created")
	FcrepoCreatedBy        = IRI(NsFcrepo + "createdBy")
	FcrepoLastModified     = IRI(NsFcrepo + "lastModified")
	FcrepoLastModifiedBy   = IRI(NsFcrepo + "lastModifiedBy")
	FcrepoHasParent        = IRI(NsFcrepo + "hasParent")
	FcrepoHasVersion       = IRI(NsFcrepo + "hasVersion")
	FcrepoHasVersions      = IRI(NsFcrepo + "hasVersions")
	FcrepoHasVersionLabel  = IRI(NsFcrepo + "hasVersionLabel")
	FcrepoBinary           = IRI(NsFcrepo + "Binary")
	FcrepoContainer        = IRI(NsFcrepo + "Container")
	FcrepoPairtree         = IRI(NsFcrepo + "Pairtree")
	FcrepoVersion          = IRI(NsFcrepo + "Version")

	PremisHasMessageDigest = IRI(NsPremis + "hasMessageDigest")
	PremisHasSize          = IRI(NsPremis + "hasSize")
	IanaDescribedBy        = IRI(NsIana + "describedBy")
	EbucoreHasMimeType     = IRI(NsEbucore + "hasMimeType")

	FcsystemTombstone   = IRI(NsFcsystem + "Tombstone")
	FcsystemBuried      = IRI(NsFcsystem + "buried")
	FcsystemTombstoneOf = IRI(NsFcsystem + "tombstone")
	FcsystemAdminGraph  = IRI(NsFcsystem + "AdminGraph")
	FcsystemUserGraph   = IRI(NsFcsystem + "UserProvidedGraph")
	FcsystemStructGraph = IRI(NsFcsystem + "StructureGraph")
	FoafPrimaryTopic    = IRI("http://xmlns.com/foaf/0.1/primaryTopic")
)
