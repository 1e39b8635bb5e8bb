package supervisor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/talismancer/journald-exporter/internal/ipc"
)

// ReadKeys scans dir for the signed-token key files served in response
// to REQUEST_KEY: each readable regular file whose
// permissions restrict read access to the owner contributes one key,
// its bytes taken verbatim, up to ipc.MaxKeyCount files. Other entries
// (directories, group/world-readable files) are skipped rather than
// erroring, since the directory may be managed concurrently by an
// operator. A file whose contents exceed ipc.MaxKeyLen is skipped
// entirely -- dropped, not silently shortened -- and counted in the
// returned fault total.
func ReadKeys(dir string) (keys [][]byte, faults int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("supervisor: read key directory %s: %w", dir, err)
	}
	for _, ent := range entries {
		if len(keys) >= ipc.MaxKeyCount {
			break
		}
		if ent.IsDir() {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o077 != 0 {
			continue // not owner-only
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			continue
		}
		if len(data) > ipc.MaxKeyLen {
			faults++
			continue
		}
		if len(data) == 0 {
			// An empty key is not representable on the wire (the
			// per-key length byte encodes len-1) and is useless as a
			// token anyway.
			continue
		}
		keys = append(keys, data)
	}
	return keys, faults, nil
}
