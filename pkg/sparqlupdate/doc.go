// Package sparqlupdate defines the pluggable SPARQL-Update evaluator
// boundary §4.7/§4.6 "SPARQL-Update evaluation" delegates to: an
// Evaluator applies an update string to a working Graph in place. The
// package also ships Subset, a small built-in evaluator covering
// DELETE/INSERT DATA and DELETE{}/INSERT{}/WHERE{} with basic graph
// pattern matching over variables — enough for the repository's own
// test suite and for callers that don't need a full SPARQL grammar.
// A production deployment is expected to plug in a complete external
// engine (the spec places full SPARQL parsing out of scope, §1).
package sparqlupdate
