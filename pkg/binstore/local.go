package binstore

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DefaultPath is the base directory for the binary store when none is
// configured.
const DefaultPath = "/var/lib/lsupd/binaries"

// DefaultBranchLength and DefaultBranches control the pairtree
// directory fan-out: a digest is split into DefaultBranches segments
// of DefaultBranchLength characters each, with the remainder of the
// digest used as the leaf file name.
const (
	DefaultBranchLength = 4
	DefaultBranches     = 4
)

// DigestAlgo identifies the content digest used to key stored
// binaries. NewHash must return a fresh, unkeyed hash.Hash.
type DigestAlgo struct {
	Name    string
	NewHash func() hash.Hash
}

// SHA256 is the default digest algorithm.
var SHA256 = DigestAlgo{Name: "sha256", NewHash: sha256.New}

// Store is a content-addressed binary store laid out as a pairtree on
// a local filesystem: every binary is written once to a temp file
// under <root>/tmp, digested while it streams through, and then
// renamed into its final digest-keyed path. Two uploads with the same
// content always resolve to the same path, so persisting an
// already-known digest is a deduplicating no-op rather than a second
// write.
type Store struct {
	root   string
	bl     int
	bc     int
	digest DigestAlgo
}

// Options configures a Store.
type Options struct {
	// BranchLength and Branches set the pairtree fan-out (§4.5). Zero
	// values fall back to DefaultBranchLength/DefaultBranches.
	BranchLength int
	Branches     int

	// Digest selects the content-addressing algorithm. The zero value
	// falls back to SHA256.
	Digest DigestAlgo
}

// Open creates the store's root and tmp directories if they don't
// already exist and returns a Store rooted there.
func Open(root string, opts Options) (*Store, error) {
	if root == "" {
		root = DefaultPath
	}
	bl := opts.BranchLength
	if bl == 0 {
		bl = DefaultBranchLength
	}
	bc := opts.Branches
	if bc == 0 {
		bc = DefaultBranches
	}
	digest := opts.Digest
	if digest.NewHash == nil {
		digest = SHA256
	}

	if err := os.MkdirAll(filepath.Join(root, "tmp"), 0o755); err != nil {
		return nil, fmt.Errorf("binstore: create root: %w", err)
	}

	return &Store{root: root, bl: bl, bc: bc, digest: digest}, nil
}

// localPath computes the pairtree path for a digest, splitting it into
// bc segments of bl characters each, with whatever remains past those
// bc*bl characters appended as one final path component. With bc == 0
// every bl-character chunk of the digest becomes a directory segment
// in turn, including the last one, so there is no separate leaf name
// distinct from the final chunk (grounded in the original's
// local_path, generalized to configurable branch length/count). The
// legacy_pairtree_split option has no effect here: it only changes how
// new resource UIDs are minted.
func (s *Store) localPath(digest string) string {
	term := len(digest)
	if s.bc != 0 && s.bc*s.bl < term {
		term = s.bc * s.bl
	}

	var segments []string
	for i := 0; i < term; i += s.bl {
		end := i + s.bl
		if end > len(digest) {
			end = len(digest)
		}
		segments = append(segments, digest[i:end])
	}
	if s.bc > 0 {
		segments = append(segments, digest[term:])
	}

	parts := append([]string{s.root}, segments...)
	return filepath.Join(parts...)
}

// Persist streams r to a temp file while computing its content digest,
// then atomically renames it into its final pairtree location. The
// returned digest is the binary's permanent content address; Path(digest)
// recovers the same location later. Persisting content that already
// exists under its digest is a no-op beyond discarding the temp file —
// deduplication is automatic and requires no separate lookup.
func (s *Store) Persist(r io.Reader) (digest string, size int64, err error) {
	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), uuid.NewString())
	if err != nil {
		return "", 0, fmt.Errorf("binstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed away

	h := s.digest.NewHash()
	n, err := io.Copy(tmp, io.TeeReader(r, h))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("binstore: write temp file: %w", err)
	}

	sum := fmt.Sprintf("%x", h.Sum(nil))
	dst := s.localPath(sum)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, fmt.Errorf("binstore: create pairtree directory: %w", err)
	}

	if _, err := os.Stat(dst); err == nil {
		return sum, n, nil // already present under this digest
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", 0, fmt.Errorf("binstore: rename into place: %w", err)
	}
	return sum, n, nil
}

// Open returns a reader over the binary stored under digest.
func (s *Store) Open(digest string) (io.ReadCloser, error) {
	f, err := os.Open(s.localPath(digest))
	if err != nil {
		return nil, fmt.Errorf("binstore: open %s: %w", digest, err)
	}
	return f, nil
}

// Delete removes the binary stored under digest. Deleting a digest
// that was never persisted, or already deleted, is not an error.
func (s *Store) Delete(digest string) error {
	if err := os.Remove(s.localPath(digest)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("binstore: delete %s: %w", digest, err)
	}
	return nil
}

// Path returns the pairtree path a digest resolves to, without
// touching the filesystem.
func (s *Store) Path(digest string) string {
	return s.localPath(digest)
}

// Fixity recomputes a stored binary's digest and reports whether it
// still matches, catching silent bit rot or an externally-modified
// pairtree file (§4.5 fixity check). recomputed is always returned
// alongside ok so a mismatch can be reported with both values.
func (s *Store) Fixity(digest string) (ok bool, recomputed string, err error) {
	f, err := s.Open(digest)
	if err != nil {
		return false, "", err
	}
	defer f.Close()

	h := s.digest.NewHash()
	if _, err := io.Copy(h, f); err != nil {
		return false, "", fmt.Errorf("binstore: read for fixity check: %w", err)
	}
	recomputed = fmt.Sprintf("%x", h.Sum(nil))
	return recomputed == digest, recomputed, nil
}

// Size returns the total size, in bytes, of every file under the
// store's root, matching the original's store_size property.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.Walk(s.root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// Count returns the number of files currently stored, matching the
// original's file_ct property.
func (s *Store) Count() (int, error) {
	n := 0
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Dir(path) != filepath.Join(s.root, "tmp") {
			n++
		}
		return nil
	})
	return n, err
}
