// internal/store/events.go
package store

import (
	"errors"
	"fmt"
)

// Image layout:
//
//	0      flags (bit0 = event acknowledge mode)
//	1..    maxEvents rows of: NNhi NNlo ENhi ENlo EV1..EVn
const (
	headerLen  = 1
	identLen   = 4
	flagEvAck  = 0x01
	maxIndexes = 255
)

var (
	ErrIndex   = errors.New("store: event index out of range")
	ErrEVIndex = errors.New("store: event variable index out of range")
)

// ImageSize is the number of bytes a table of the given geometry occupies.
func ImageSize(maxEvents, maxEVs int) int {
	return headerLen + maxEvents*(identLen+maxEVs)
}

// EventStore is the bounded table of learned events.
// The hash table is RAM only and rebuilt from memory on New.
type EventStore struct {
	mem       Memory
	maxEvents int
	maxEVs    int
	hashes    []byte
}

// New binds a table geometry to mem and rebuilds the hash index.
func New(mem Memory, maxEvents, maxEVs int) (*EventStore, error) {
	if maxEvents < 1 || maxEvents > maxIndexes {
		return nil, fmt.Errorf("store: max events %d out of range 1..%d", maxEvents, maxIndexes)
	}
	if maxEVs < 1 || maxEVs > 255 {
		return nil, fmt.Errorf("store: max event variables %d out of range 1..255", maxEVs)
	}
	if need := ImageSize(maxEvents, maxEVs); mem.Len() < need {
		return nil, fmt.Errorf("store: memory is %d bytes, geometry needs %d", mem.Len(), need)
	}

	s := &EventStore{
		mem:       mem,
		maxEvents: maxEvents,
		maxEVs:    maxEVs,
		hashes:    make([]byte, maxEvents),
	}
	for i := range s.hashes {
		s.refreshHash(i)
	}
	return s, nil
}

// Capacity is the fixed number of rows.
func (s *EventStore) Capacity() int { return s.maxEvents }

// VariableCount is the fixed number of EVs per event.
func (s *EventStore) VariableCount() int { return s.maxEVs }

func (s *EventStore) rowOffset(index int) int {
	return headerLen + index*(identLen+s.maxEVs)
}

func (s *EventStore) readIdent(index int) (nn, en uint16) {
	var b [identLen]byte
	s.mem.ReadAt(s.rowOffset(index), b[:])
	return uint16(b[0])<<8 | uint16(b[1]), uint16(b[2])<<8 | uint16(b[3])
}

func (s *EventStore) refreshHash(index int) {
	nn, en := s.readIdent(index)
	if nn == 0 && en == 0 {
		s.hashes[index] = 0
		return
	}
	s.hashes[index] = makeHash(nn, en)
}

// Find returns the row holding (nn, en).
func (s *EventStore) Find(nn, en uint16) (int, bool) {
	h := makeHash(nn, en)
	for i, eh := range s.hashes {
		if eh != h {
			continue
		}
		rnn, ren := s.readIdent(i)
		if rnn == nn && ren == en {
			return i, true
		}
	}
	return 0, false
}

// FreeSlot returns the first free row; false means the table is full.
func (s *EventStore) FreeSlot() (int, bool) {
	for i, h := range s.hashes {
		if h == 0 {
			return i, true
		}
	}
	return 0, false
}

// Occupied reports whether the row at index holds an event.
func (s *EventStore) Occupied(index int) bool {
	if index < 0 || index >= s.maxEvents {
		return false
	}
	return s.hashes[index] != 0
}

// Event returns the identity stored at index.
func (s *EventStore) Event(index int) (nn, en uint16, err error) {
	if index < 0 || index >= s.maxEvents {
		return 0, 0, ErrIndex
	}
	nn, en = s.readIdent(index)
	return nn, en, nil
}

// Upsert writes the identity of a row and its hash entry together.
// Writing (0, 0) frees the row.
func (s *EventStore) Upsert(index int, nn, en uint16) error {
	if index < 0 || index >= s.maxEvents {
		return ErrIndex
	}
	if nn == 0 && en == 0 {
		return s.Remove(index)
	}
	b := [identLen]byte{byte(nn >> 8), byte(nn), byte(en >> 8), byte(en)}
	s.mem.WriteAt(s.rowOffset(index), b[:])
	s.refreshHash(index)
	return nil
}

// Remove zeroes identity and EVs of a row and frees its hash entry.
func (s *EventStore) Remove(index int) error {
	if index < 0 || index >= s.maxEvents {
		return ErrIndex
	}
	s.mem.WriteAt(s.rowOffset(index), make([]byte, identLen+s.maxEVs))
	s.hashes[index] = 0
	return nil
}

// EV reads event variable evNum (1-based) of the row at index.
func (s *EventStore) EV(index, evNum int) (byte, error) {
	off, err := s.evOffset(index, evNum)
	if err != nil {
		return 0, err
	}
	var b [1]byte
	s.mem.ReadAt(off, b[:])
	return b[0], nil
}

// SetEV writes event variable evNum (1-based) of the row at index.
func (s *EventStore) SetEV(index, evNum int, v byte) error {
	off, err := s.evOffset(index, evNum)
	if err != nil {
		return err
	}
	s.mem.WriteAt(off, []byte{v})
	return nil
}

func (s *EventStore) evOffset(index, evNum int) (int, error) {
	if index < 0 || index >= s.maxEvents {
		return 0, ErrIndex
	}
	if evNum < 1 || evNum > s.maxEVs {
		return 0, ErrEVIndex
	}
	return s.rowOffset(index) + identLen + evNum - 1, nil
}

// FreeCount counts rows with a zero hash entry.
func (s *EventStore) FreeCount() int {
	n := 0
	for _, h := range s.hashes {
		if h == 0 {
			n++
		}
	}
	return n
}

// Count is the number of occupied rows.
func (s *EventStore) Count() int { return s.maxEvents - s.FreeCount() }

// ClearAll frees every row.
func (s *EventStore) ClearAll() {
	zero := make([]byte, identLen+s.maxEVs)
	for i := range s.hashes {
		s.mem.WriteAt(s.rowOffset(i), zero)
		s.hashes[i] = 0
	}
}

// EventAck reports the persisted event acknowledge mode.
func (s *EventStore) EventAck() bool {
	var b [1]byte
	s.mem.ReadAt(0, b[:])
	return b[0]&flagEvAck != 0
}

// SetEventAck persists the event acknowledge mode.
func (s *EventStore) SetEventAck(on bool) {
	var b [1]byte
	s.mem.ReadAt(0, b[:])
	if on {
		b[0] |= flagEvAck
	} else {
		b[0] &^= flagEvAck
	}
	s.mem.WriteAt(0, b[:])
}
