// Package ihex implements a sparse addressed memory image and its Intel HEX
// encoding, as used to merge application binaries with vendor firmware.
package ihex

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// addressSpace is the size of the 32-bit address space Intel HEX can describe.
const addressSpace = uint64(1) << 32

// Segment is a contiguous run of bytes starting at Address.
type Segment struct {
	Address uint32
	Data    []byte
}

func (s Segment) end() uint64 { return uint64(s.Address) + uint64(len(s.Data)) }

// Start is an execution start address record. Segment start addresses (record
// type 03) keep CS in the upper and IP in the lower 16 bits of Value.
type Start struct {
	Segment bool
	Value   uint32
}

// Memory is a sparse image. Segments are kept sorted, non-overlapping and
// coalesced: two segments never touch.
type Memory struct {
	segments []Segment
	start    *Start
}

// NewMemory returns an empty image.
func NewMemory() *Memory {
	return &Memory{}
}

// FromBinary returns an image holding data at [offset, offset+len(data)).
func FromBinary(data []byte, offset uint32) (*Memory, error) {
	m := NewMemory()
	if err := m.SetBinary(offset, data); err != nil {
		return nil, err
	}
	return m, nil
}

func checkedEnd(addr uint32, n int) (uint64, error) {
	size, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("%w: %d bytes: %w", ferrors.ErrAddressOverrun, n, err)
	}
	end := uint64(addr) + uint64(size)
	if end > addressSpace {
		return 0, fmt.Errorf("%w: 0x%08x+%d", ferrors.ErrAddressOverrun, addr, n)
	}
	return end, nil
}

// SetBinary writes data at addr, replacing whatever the image held there.
func (m *Memory) SetBinary(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	end, err := checkedEnd(addr, len(data))
	if err != nil {
		return err
	}

	kept := make([]Segment, 0, len(m.segments)+2)
	for _, s := range m.segments {
		if s.end() <= uint64(addr) || uint64(s.Address) >= end {
			kept = append(kept, s)
			continue
		}
		if s.Address < addr {
			kept = append(kept, Segment{Address: s.Address, Data: s.Data[:addr-s.Address]})
		}
		if s.end() > end {
			cut := end - uint64(s.Address)
			kept = append(kept, Segment{Address: uint32(end), Data: s.Data[cut:]})
		}
	}
	kept = append(kept, Segment{Address: addr, Data: append([]byte(nil), data...)})
	m.segments = coalesce(kept)
	return nil
}

func coalesce(segs []Segment) []Segment {
	sort.Slice(segs, func(i, j int) bool { return segs[i].Address < segs[j].Address })
	out := segs[:0]
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].end() == uint64(s.Address) {
			merged := make([]byte, 0, len(out[n-1].Data)+len(s.Data))
			merged = append(merged, out[n-1].Data...)
			out[n-1].Data = append(merged, s.Data...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// Merge overlays other onto m. Where both images hold a byte, other wins;
// the start address is taken from other when it has one.
func (m *Memory) Merge(other *Memory) error {
	for _, s := range other.segments {
		if err := m.SetBinary(s.Address, s.Data); err != nil {
			return err
		}
	}
	if other.start != nil {
		start := *other.start
		m.start = &start
	}
	return nil
}

// Overlaps reports whether any byte in [addr, addr+n) is populated.
func (m *Memory) Overlaps(addr uint32, n int) bool {
	end := uint64(addr) + uint64(n)
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].end() > uint64(addr) })
	return i < len(m.segments) && uint64(m.segments[i].Address) < end
}

// Get returns the byte at addr.
func (m *Memory) Get(addr uint32) (byte, bool) {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].end() > uint64(addr) })
	if i == len(m.segments) || m.segments[i].Address > addr {
		return 0, false
	}
	s := m.segments[i]
	return s.Data[addr-s.Address], true
}

// Segments returns a copy of the populated ranges in address order.
func (m *Memory) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	for i, s := range m.segments {
		out[i] = Segment{Address: s.Address, Data: append([]byte(nil), s.Data...)}
	}
	return out
}

// Size is the number of populated bytes.
func (m *Memory) Size() int {
	n := 0
	for _, s := range m.segments {
		n += len(s.Data)
	}
	return n
}

// ToBinary renders [start, start+length) as a flat image, filling holes.
func (m *Memory) ToBinary(start uint32, length int, fill byte) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = fill
	}
	end := uint64(start) + uint64(length)
	for _, s := range m.segments {
		if s.end() <= uint64(start) || uint64(s.Address) >= end {
			continue
		}
		lo := max(uint64(s.Address), uint64(start))
		hi := min(s.end(), end)
		copy(out[lo-uint64(start):hi-uint64(start)], s.Data[lo-uint64(s.Address):hi-uint64(s.Address)])
	}
	return out
}

// StartAddress returns the execution start record, if any.
func (m *Memory) StartAddress() (Start, bool) {
	if m.start == nil {
		return Start{}, false
	}
	return *m.start, true
}

// SetStartAddress records an execution start address.
func (m *Memory) SetStartAddress(s Start) {
	m.start = &s
}
