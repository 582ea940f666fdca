// Package layout provides the resource-centric view over the quad
// store (§4.4): it maps each LDP resource UID onto its cluster of
// named graphs (admin/user/struct/hist), routes triples to the right
// graph on write, composes the in-memory resource (IMR) on read, and
// walks containment and referential-integrity relationships.
//
// Routing is table-driven the way the original rsrc_centric_layout's
// attr_map is: a fixed set of server-managed predicates and rdf:type
// objects send a triple to the admin graph, ldp:contains sends it to
// the struct graph, and everything else falls through to the user
// graph. A meta-registry graph records, for every graph Modify adds
// triples to, its primaryTopic resource, the timestamp it was first
// registered (fcrepo:created) and, once written again, the timestamp
// of its latest write (fcrepo:lastModified) — the same bookkeeping the original's modify_rsrc performs
// against its META_GR_URI/HIST_GR_URI.
package layout
