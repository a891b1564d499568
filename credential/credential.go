// Package credential decides which presented card identifiers may trigger a
// transmission.
package credential

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	proto "github.com/ystepanoff/ookcomm/protocol"
)

// UIDSize is the only card identifier width accepted.
const UIDSize = 4

type UID [UIDSize]byte

// ParseUID accepts "C0 A9 72 A3", "C0:A9:72:A3" or "c0a972a3".
func ParseUID(s string) (UID, error) {
	var uid UID
	clean := strings.NewReplacer(" ", "", ":", "", "-", "").Replace(strings.TrimSpace(s))
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")

	b, err := hex.DecodeString(clean)
	if err != nil || len(b) != UIDSize {
		return uid, fmt.Errorf("%w: %q", proto.ErrInvalidUID, s)
	}
	copy(uid[:], b)
	return uid, nil
}

// ParseUIDs parses every entry, stopping at the first bad one.
func ParseUIDs(entries []string) ([]UID, error) {
	uids := make([]UID, 0, len(entries))
	for _, e := range entries {
		uid, err := ParseUID(e)
		if err != nil {
			return nil, err
		}
		uids = append(uids, uid)
	}
	return uids, nil
}

// String formats the UID as space separated hex bytes.
func (u UID) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X", u[0], u[1], u[2], u[3])
}

// Checker is consulted once per card presentation.
type Checker interface {
	Allowed(uid UID) bool
}

// List is a fixed set of authorised cards.
type List []UID

func (l List) Allowed(uid UID) bool {
	for _, u := range l {
		if u == uid {
			return true
		}
	}
	return false
}

// Store is a Checker whose contents can be swapped while the sender runs.
type Store struct {
	mu   sync.RWMutex
	uids map[UID]struct{}
}

func NewStore(uids ...UID) *Store {
	s := &Store{}
	s.Replace(uids)
	return s
}

func (s *Store) Allowed(uid UID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.uids[uid]
	return ok
}

// Replace installs a new authorised set in one step.
func (s *Store) Replace(uids []UID) {
	m := make(map[UID]struct{}, len(uids))
	for _, u := range uids {
		m[u] = struct{}{}
	}
	s.mu.Lock()
	s.uids = m
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uids)
}
