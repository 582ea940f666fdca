/*
Package binstore implements the content-addressed binary store that
backs every Non-RDF Source: binary payloads live on a local filesystem
under a pairtree keyed by their own content digest, not by resource
UID (§4.5).

# Layout

	<root>/
	├── tmp/                 staging area for in-flight writes
	└── ab/cd/ef/abcdef...    pairtree leaf, split bl chars at a time

Persist streams its input to a temp file under <root>/tmp while
hashing it, then renames the temp file into its final pairtree
location once the digest is known. Two uploads of identical content
always resolve to the same path, so a second Persist of the same bytes
is just a rename that gets skipped — deduplication falls out of the
content address for free, with no separate existence check required
before persisting.

# Why digest, not UID

Keying by digest instead of by resource UID means identical binaries
uploaded to different resources (or to the same resource across
versions) are stored once; the RDF layer is responsible for mapping a
resource's current and historical digests back to a pairtree path via
Store.Path. Unlinking a resource from a digest is a layout-level
concern and is distinct from removing the binary — the store itself
only ever deletes by digest.
*/
package binstore
