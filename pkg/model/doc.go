// Package model implements the LDP resource model and factory
// (§4.6): a tagged enum of LDP variants, server-managed triple
// enforcement, the create/replace algorithm, versioning, and the
// bury/forget/resurrect delete lifecycle. It is the layer HTTP
// handlers talk to; it never constructs a layout.Layout itself, but
// receives one as a capability (§9, breaking the model/layout cycle).
package model
