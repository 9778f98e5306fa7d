package ihex

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// Record types.
const (
	recData            = 0x00
	recEOF             = 0x01
	recExtSegment      = 0x02
	recStartSegment    = 0x03
	recExtLinear       = 0x04
	recStartLinear     = 0x05
	maxDataRecordBytes = 16
)

func checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return -sum
}

func invalid(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ferrors.ErrInvalidHex, line, fmt.Sprintf(format, args...))
}

// Parse reads an Intel HEX stream. Every record checksum is verified, data
// records may not overlap each other and the stream must end with an EOF
// record. Anything after the EOF record is ignored.
func Parse(r io.Reader) (*Memory, error) {
	m := NewMemory()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	var base uint32
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text[0] != ':' {
			return nil, invalid(lineNo, "missing start code")
		}
		raw, err := hex.DecodeString(text[1:])
		if err != nil {
			return nil, invalid(lineNo, "%v", err)
		}
		if len(raw) < 5 || len(raw) != 5+int(raw[0]) {
			return nil, invalid(lineNo, "bad record length")
		}
		if checksum(raw[:len(raw)-1]) != raw[len(raw)-1] {
			return nil, invalid(lineNo, "checksum mismatch")
		}

		offset := binary.BigEndian.Uint16(raw[1:3])
		payload := raw[4 : len(raw)-1]
		switch raw[3] {
		case recData:
			addr := base + uint32(offset)
			if m.Overlaps(addr, len(payload)) {
				return nil, invalid(lineNo, "data at 0x%08x overlaps earlier record", addr)
			}
			if err := m.SetBinary(addr, payload); err != nil {
				return nil, invalid(lineNo, "%v", err)
			}
		case recEOF:
			return m, nil
		case recExtSegment, recExtLinear:
			if len(payload) != 2 {
				return nil, invalid(lineNo, "address record needs 2 bytes")
			}
			v := uint32(binary.BigEndian.Uint16(payload))
			if raw[3] == recExtSegment {
				base = v << 4
			} else {
				base = v << 16
			}
		case recStartSegment, recStartLinear:
			if len(payload) != 4 {
				return nil, invalid(lineNo, "start record needs 4 bytes")
			}
			m.SetStartAddress(Start{Segment: raw[3] == recStartSegment, Value: binary.BigEndian.Uint32(payload)})
		default:
			return nil, invalid(lineNo, "unknown record type %02X", raw[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: missing end-of-file record", ferrors.ErrInvalidHex)
}

type recordWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (rw *recordWriter) record(typ byte, offset uint16, payload []byte) {
	if rw.err != nil {
		return
	}
	raw := make([]byte, 0, 5+len(payload))
	raw = append(raw, byte(len(payload)), byte(offset>>8), byte(offset), typ)
	raw = append(raw, payload...)
	raw = append(raw, checksum(raw))
	line := ":" + strings.ToUpper(hex.EncodeToString(raw)) + "\n"
	n, err := rw.w.WriteString(line)
	rw.n += int64(n)
	rw.err = err
}

// WriteTo encodes m as Intel HEX: the start record first, then data in
// records of at most 16 bytes with extended linear address records whenever
// the upper 16 address bits change, then EOF.
func (m *Memory) WriteTo(w io.Writer) (int64, error) {
	rw := &recordWriter{w: bufio.NewWriter(w)}

	if m.start != nil {
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], m.start.Value)
		typ := byte(recStartLinear)
		if m.start.Segment {
			typ = recStartSegment
		}
		rw.record(typ, 0, v[:])
	}

	var upper uint32
	for _, s := range m.segments {
		for pos := 0; pos < len(s.Data); {
			addr := s.Address + uint32(pos)
			if hi := addr >> 16; hi != upper {
				var v [2]byte
				binary.BigEndian.PutUint16(v[:], uint16(hi))
				rw.record(recExtLinear, 0, v[:])
				upper = hi
			}
			// Records never cross a 64 KiB boundary.
			n := min(maxDataRecordBytes, len(s.Data)-pos, int(0x10000-(addr&0xFFFF)))
			rw.record(recData, uint16(addr), s.Data[pos:pos+n])
			pos += n
		}
	}
	rw.record(recEOF, 0, nil)

	if rw.err != nil {
		return rw.n, rw.err
	}
	return rw.n, rw.w.Flush()
}
