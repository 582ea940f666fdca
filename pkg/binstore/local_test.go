package binstore

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestOpenCreatesRootAndTmp(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := Open(tmpDir, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store == nil {
		t.Fatal("Open() returned nil store")
	}

	if _, err := os.Stat(tmpDir + "/tmp"); os.IsNotExist(err) {
		t.Error("tmp staging directory was not created")
	}
}

func TestPersistThenOpenRoundTrips(t *testing.T) {
	store, _ := Open(t.TempDir(), Options{})

	content := []byte("hello, fedora")
	digest, size, err := store.Persist(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}

	r, err := store.Open(digest)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", digest, err)
	}
	defer r.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if buf.String() != string(content) {
		t.Errorf("content = %q, want %q", buf.String(), content)
	}
}

func TestPersistIsContentAddressed(t *testing.T) {
	store, _ := Open(t.TempDir(), Options{})

	d1, _, err := store.Persist(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	d2, _, err := store.Persist(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if d1 != d2 {
		t.Errorf("identical content produced different digests: %s vs %s", d1, d2)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1 (deduplicated)", n)
	}
}

func TestDeleteNonExistentIsNotError(t *testing.T) {
	store, _ := Open(t.TempDir(), Options{})

	if err := store.Delete("deadbeef"); err != nil {
		t.Errorf("Delete() on non-existent digest error = %v, want nil", err)
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	store, _ := Open(t.TempDir(), Options{})

	digest, _, err := store.Persist(strings.NewReader("to be deleted"))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	if err := store.Delete(digest); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := store.Open(digest); err == nil {
		t.Error("Open() after Delete() should have failed")
	}
}

func TestFixityDetectsCorruption(t *testing.T) {
	store, _ := Open(t.TempDir(), Options{})

	digest, _, err := store.Persist(strings.NewReader("pristine"))
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	ok, recomputed, err := store.Fixity(digest)
	if err != nil {
		t.Fatalf("Fixity() error = %v", err)
	}
	if !ok {
		t.Error("Fixity() = false on an untouched file, want true")
	}
	if recomputed != digest {
		t.Errorf("Fixity() recomputed = %s, want %s", recomputed, digest)
	}

	if err := os.WriteFile(store.Path(digest), []byte("tampered"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ok, recomputed, err = store.Fixity(digest)
	if err != nil {
		t.Fatalf("Fixity() error = %v", err)
	}
	if ok {
		t.Error("Fixity() = true on a tampered file, want false")
	}
	if recomputed == digest {
		t.Errorf("Fixity() recomputed = %s, want a different digest after tampering", recomputed)
	}
}

func TestLocalPathChunksEntireDigestWhenBranchesZero(t *testing.T) {
	store, err := Open(t.TempDir(), Options{Branches: 0, BranchLength: 4})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	digest := "0123456789abcdef"
	path := store.Path(digest)
	if !strings.HasSuffix(path, "cdef") {
		t.Errorf("Path() = %s, want suffix %s (last 4-char chunk)", path, "cdef")
	}
	if strings.Contains(path, digest) {
		t.Errorf("Path() = %s should not contain the whole digest as one component", path)
	}
}
