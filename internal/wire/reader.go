package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// Reader decodes little-endian message fields with bounds checks.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) need(op string, n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("%s: not enough data (pos=%d, len=%d)", op, r.pos, len(r.data))
	}
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need("ReadByte", 1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

// ReadShort reads an int16.
func (r *Reader) ReadShort() (int16, error) {
	if err := r.need("ReadShort", 2); err != nil {
		return 0, err
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v, nil
}

// ReadInt reads an int32.
func (r *Reader) ReadInt() (int32, error) {
	if err := r.need("ReadInt", 4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadLong reads an int64.
func (r *Reader) ReadLong() (int64, error) {
	if err := r.need("ReadLong", 8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadFloat reads a float32.
func (r *Reader) ReadFloat() (float32, error) {
	if err := r.need("ReadFloat", 4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadDouble reads a float64.
func (r *Reader) ReadDouble() (float64, error) {
	if err := r.need("ReadDouble", 8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.data[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadString reads a null-terminated UTF-16LE string.
func (r *Reader) ReadString() (string, error) {
	units := make([]uint16, 0, 32)
	for {
		if r.pos+2 > len(r.data) {
			return "", fmt.Errorf("ReadString: unexpected end of data (pos=%d, len=%d)", r.pos, len(r.data))
		}
		u := binary.LittleEndian.Uint16(r.data[r.pos:])
		r.pos += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}
