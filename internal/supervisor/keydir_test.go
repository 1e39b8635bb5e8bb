package supervisor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadKeysSkipsGroupReadableFiles(t *testing.T) {
	dir := t.TempDir()
	ownerOnly := filepath.Join(dir, "owner-only.key")
	if err := os.WriteFile(ownerOnly, []byte("secret-one"), 0o600); err != nil {
		t.Fatal(err)
	}
	groupReadable := filepath.Join(dir, "group-readable.key")
	if err := os.WriteFile(groupReadable, []byte("secret-two"), 0o640); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o700); err != nil {
		t.Fatal(err)
	}

	keys, faults, err := ReadKeys(dir)
	if err != nil {
		t.Fatal(err)
	}
	if faults != 0 {
		t.Fatalf("faults = %d, want 0", faults)
	}
	if len(keys) != 1 {
		t.Fatalf("len(keys) = %d, want 1", len(keys))
	}
	if string(keys[0]) != "secret-one" {
		t.Fatalf("got %q, want %q", keys[0], "secret-one")
	}
}

func TestReadKeysSkipsOversizedFilesAndCountsFault(t *testing.T) {
	dir := t.TempDir()
	big := make([]byte, 400)
	for i := range big {
		big[i] = 'x'
	}
	if err := os.WriteFile(filepath.Join(dir, "big.key"), big, 0o600); err != nil {
		t.Fatal(err)
	}
	keys, faults, err := ReadKeys(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Fatalf("len(keys) = %d, want 0 (oversized file must be dropped, not truncated)", len(keys))
	}
	if faults != 1 {
		t.Fatalf("faults = %d, want 1", faults)
	}
}
