package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"unicode/utf16"
)

// AssertOpcode checks that the first byte of a message is the expected opcode.
func AssertOpcode(t testing.TB, expected byte, msg []byte) {
	t.Helper()

	if len(msg) == 0 {
		t.Fatalf("message is empty, expected opcode 0x%02X", expected)
	}
	if msg[0] != expected {
		t.Fatalf("opcode mismatch: expected 0x%02X, got 0x%02X", expected, msg[0])
	}
}

// AssertInt32LE checks a little-endian int32 at offset.
func AssertInt32LE(t testing.TB, expected int32, msg []byte, offset int) {
	t.Helper()

	if len(msg) < offset+4 {
		t.Fatalf("message too short: need %d bytes for int32 at offset %d, got %d", offset+4, offset, len(msg))
	}
	actual := int32(binary.LittleEndian.Uint32(msg[offset:]))
	if actual != expected {
		t.Fatalf("int32 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertUTF16String checks a null-terminated UTF-16LE string at offset.
func AssertUTF16String(t testing.TB, expected string, msg []byte, offset int) {
	t.Helper()

	end := -1
	for i := offset; i+1 < len(msg); i += 2 {
		if msg[i] == 0 && msg[i+1] == 0 {
			end = i
			break
		}
	}
	if end == -1 {
		t.Fatalf("UTF-16 string at offset %d has no null terminator", offset)
	}

	units := make([]uint16, (end-offset)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(msg[offset+i*2:])
	}
	if actual := string(utf16.Decode(units)); actual != expected {
		t.Fatalf("UTF-16 string mismatch at offset %d: expected %q, got %q", offset, expected, actual)
	}
}

// DumpMessage returns a hex dump for failure output.
func DumpMessage(msg []byte) string {
	var buf bytes.Buffer
	for i := 0; i < len(msg); i += 16 {
		end := min(i+16, len(msg))
		fmt.Fprintf(&buf, "%04x  ", i)
		for _, b := range msg[i:end] {
			fmt.Fprintf(&buf, "%02x ", b)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
