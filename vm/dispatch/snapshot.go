package dispatch

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Snapshots persist per-site cache profiles for offline analysis: which
// sites went polymorphic, which flipped to megamorphic, and how well the
// caches held up. Encoded as canonical CBOR so identical profiles produce
// identical bytes.

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dispatch: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a point-in-time dump of every call site's profile.
type Snapshot struct {
	Session  string        `cbor:"session"`
	TakenAt  time.Time     `cbor:"taken_at"`
	MaxDepth int           `cbor:"max_depth"`
	Sites    []SiteProfile `cbor:"sites"`
}

// SiteProfile is one call site's profile. The fingerprint is stable
// across runs (it hashes owner, selector, and ordinal, not pointers), so
// profiles from different sessions can be matched up.
type SiteProfile struct {
	Fingerprint uint64 `cbor:"fingerprint"`
	Owner       string `cbor:"owner"`
	Selector    string `cbor:"selector"`
	Ordinal     int    `cbor:"ordinal"`
	State       string `cbor:"state"`
	Depth       int    `cbor:"depth"`
	Hits        uint64 `cbor:"hits"`
	Misses      uint64 `cbor:"misses"`
	Installs    uint64 `cbor:"installs"`
	Rebuilds    uint64 `cbor:"rebuilds"`
}

// Fingerprint computes the stable identity of a call site.
func Fingerprint(owner, selector string, ordinal int) uint64 {
	h := xxhash.New()
	h.WriteString(owner)
	h.Write([]byte{0})
	h.WriteString(selector)
	h.Write([]byte{0})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(ordinal))
	h.Write(buf[:])
	return h.Sum64()
}

// Snapshot captures the current profile of every site. Each snapshot gets
// a fresh session ID so files from different runs stay distinguishable.
func (en *Engine) Snapshot() *Snapshot {
	sites := en.Sites()
	snap := &Snapshot{
		Session:  uuid.NewString(),
		TakenAt:  time.Now().UTC(),
		MaxDepth: en.cfg.MaxDepth,
		Sites:    make([]SiteProfile, 0, len(sites)),
	}
	for _, site := range sites {
		st := site.Stats()
		snap.Sites = append(snap.Sites, SiteProfile{
			Fingerprint: Fingerprint(st.Owner, st.Selector, st.Ordinal),
			Owner:       st.Owner,
			Selector:    st.Selector,
			Ordinal:     st.Ordinal,
			State:       st.State.String(),
			Depth:       st.Depth,
			Hits:        st.Hits,
			Misses:      st.Misses,
			Installs:    st.Installs,
			Rebuilds:    st.Rebuilds,
		})
	}
	return snap
}

// MarshalSnapshot serializes a snapshot to canonical CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("dispatch: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// WriteSnapshot takes a snapshot and writes it to path.
func (en *Engine) WriteSnapshot(path string) error {
	data, err := MarshalSnapshot(en.Snapshot())
	if err != nil {
		return fmt.Errorf("dispatch: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dispatch: write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dispatch: read snapshot: %w", err)
	}
	return UnmarshalSnapshot(data)
}
