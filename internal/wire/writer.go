package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
)

// Writer encodes message fields in little-endian order.
type Writer struct {
	buf *bytes.Buffer
}

// writerPool keeps Writers between messages; Get resets, Put returns.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: bytes.NewBuffer(make([]byte, 0, 512))}
	},
}

// Get returns a reset Writer from the pool.
func Get() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// Put returns w to the pool. w must not be used afterwards.
func (w *Writer) Put() {
	writerPool.Put(w)
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: bytes.NewBuffer(make([]byte, 0, capacity))}
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

// WriteShort writes an int16.
func (w *Writer) WriteShort(val int16) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
}

// WriteInt writes an int32.
func (w *Writer) WriteInt(val int32) {
	w.buf.WriteByte(byte(val))
	w.buf.WriteByte(byte(val >> 8))
	w.buf.WriteByte(byte(val >> 16))
	w.buf.WriteByte(byte(val >> 24))
}

// WriteLong writes an int64.
func (w *Writer) WriteLong(val int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(val))
	w.buf.Write(tmp[:])
}

// WriteFloat writes an IEEE 754 float32.
func (w *Writer) WriteFloat(val float32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(val))
	w.buf.Write(tmp[:])
}

// WriteDouble writes an IEEE 754 float64.
func (w *Writer) WriteDouble(val float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(val))
	w.buf.Write(tmp[:])
}

// WriteString writes s as null-terminated UTF-16LE.
// Runes above the BMP are written as surrogate pairs.
func (w *Writer) WriteString(s string) {
	w.buf.Grow(len(s)*2 + 2)
	for _, r := range s {
		if r <= 0xFFFF {
			w.buf.WriteByte(byte(r))
			w.buf.WriteByte(byte(r >> 8))
			continue
		}
		r -= 0x10000
		high := uint16((r >> 10) + 0xD800)
		low := uint16((r & 0x3FF) + 0xDC00)
		w.buf.WriteByte(byte(high))
		w.buf.WriteByte(byte(high >> 8))
		w.buf.WriteByte(byte(low))
		w.buf.WriteByte(byte(low >> 8))
	}
	w.buf.WriteByte(0x00)
	w.buf.WriteByte(0x00)
}

// Bytes returns the encoded data. The slice is only valid until the next write or Put.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the encoded length.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset clears the buffer.
func (w *Writer) Reset() {
	w.buf.Reset()
}
