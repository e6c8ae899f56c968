package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"mediavault/internal/catalog"
)

type memorySnapshot struct {
	data    []byte
	version int64
}

// MemoryVault keeps snapshots in memory. It is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string]memorySnapshot // "hostID/name"
	mu        sync.RWMutex
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string]memorySnapshot),
	}
}

func snapshotKey(hostID, name string) string {
	return hostID + "/" + name
}

func (m *MemoryVault) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshotKey(hostID, name)] = memorySnapshot{data: data, version: version}
	return nil
}

func (m *MemoryVault) GetSnapshot(hostID, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[snapshotKey(hostID, name)]
	if !ok {
		return fmt.Errorf("%s for host %s: %w", name, hostID, catalog.ErrSnapshotNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(snap.data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns 0 when nothing has been stored for hostID/name.
func (m *MemoryVault) SnapshotVersion(hostID, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[snapshotKey(hostID, name)].version, nil
}

func (m *MemoryVault) ValidateSetup() error {
	return nil
}

var _ catalog.Vault = (*MemoryVault)(nil)
