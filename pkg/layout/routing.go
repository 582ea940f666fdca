package layout

import "github.com/fcrepo-go/lsup/pkg/rdf"

// GraphKind identifies which of a resource's named graphs a triple
// belongs in.
type GraphKind int

const (
	GraphUser GraphKind = iota
	GraphAdmin
	GraphStruct
)

// predicateRoutes sends a fixed set of server-managed predicates, plus
// the three directive predicates a direct/indirect container's
// membership triples reuse, to the admin graph; ldp:contains goes to
// struct. Everything absent from this table defaults to user.
var predicateRoutes = map[string]GraphKind{
	rdf.NsEbucore + "hasMimeType":           GraphAdmin,
	rdf.NsFcrepo + "created":                GraphAdmin,
	rdf.NsFcrepo + "createdBy":              GraphAdmin,
	rdf.NsFcrepo + "hasParent":              GraphAdmin,
	rdf.NsFcrepo + "hasVersion":             GraphAdmin,
	rdf.NsFcrepo + "hasVersions":            GraphAdmin,
	rdf.NsFcrepo + "lastModified":           GraphAdmin,
	rdf.NsFcrepo + "lastModifiedBy":         GraphAdmin,
	rdf.NsFcsystem + "tombstone":            GraphAdmin,
	rdf.NsFcsystem + "buried":               GraphAdmin,
	rdf.NsLDP + "membershipResource":        GraphAdmin,
	rdf.NsLDP + "hasMemberRelation":         GraphAdmin,
	rdf.NsLDP + "insertedContentRelation":   GraphAdmin,
	rdf.NsIana + "describedBy":              GraphAdmin,
	rdf.NsPremis + "hasMessageDigest":       GraphAdmin,
	rdf.NsPremis + "hasSize":                GraphAdmin,
	rdf.NsLDP + "contains":                  GraphStruct,
}

// typeRoutes sends triples of the form (_, rdf:type, T) to the admin
// graph when T is one of the server-managed LDP/fcrepo/fcsystem
// classes.
var typeRoutes = map[string]GraphKind{
	rdf.NsFcrepo + "Binary":          GraphAdmin,
	rdf.NsFcrepo + "Container":       GraphAdmin,
	rdf.NsFcrepo + "Pairtree":        GraphAdmin,
	rdf.NsFcrepo + "Version":         GraphAdmin,
	rdf.NsFcsystem + "Tombstone":     GraphAdmin,
	rdf.NsLDP + "Resource":           GraphAdmin,
	rdf.NsLDP + "RDFSource":          GraphAdmin,
	rdf.NsLDP + "NonRDFSource":       GraphAdmin,
	rdf.NsLDP + "BasicContainer":     GraphAdmin,
	rdf.NsLDP + "Container":          GraphAdmin,
	rdf.NsLDP + "DirectContainer":    GraphAdmin,
	rdf.NsLDP + "IndirectContainer":  GraphAdmin,
}

// Route reports which named graph a triple belongs in.
func Route(t rdf.Triple) GraphKind {
	if kind, ok := predicateRoutes[t.P.Value]; ok {
		return kind
	}
	if t.P == rdf.RDFType {
		if kind, ok := typeRoutes[t.O.Value]; ok {
			return kind
		}
	}
	return GraphUser
}

// GraphURI returns the named-graph URI term for a (uid, kind) pair.
func GraphURI(uid string, kind GraphKind) rdf.Term {
	switch kind {
	case GraphAdmin:
		return rdf.GraphAdmin(uid)
	case GraphStruct:
		return rdf.GraphStruct(uid)
	default:
		return rdf.GraphUser(uid)
	}
}

// graphRDFType is the rdf:type value Modify stamps on a graph's entry
// in the meta/hist registry, mirroring graph_ns_types.
func graphRDFType(kind GraphKind) rdf.Term {
	switch kind {
	case GraphAdmin:
		return rdf.FcsystemAdminGraph
	case GraphStruct:
		return rdf.FcsystemStructGraph
	default:
		return rdf.FcsystemUserGraph
	}
}
