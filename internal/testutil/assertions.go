package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// AssertPacketOpcode проверяет, что первый байт пакета соответствует ожидаемому opcode.
func AssertPacketOpcode(t testing.TB, expected byte, packet []byte) {
	t.Helper()

	if len(packet) == 0 {
		t.Fatalf("packet is empty, expected opcode 0x%02X", expected)
	}

	actual := packet[0]
	if actual != expected {
		t.Fatalf("packet opcode mismatch: expected 0x%02X, got 0x%02X", expected, actual)
	}
}

// AssertInt32LE проверяет, что int32 значение в пакете (little-endian) соответствует ожидаемому.
func AssertInt32LE(t testing.TB, expected int32, packet []byte, offset int) {
	t.Helper()

	if len(packet) < offset+4 {
		t.Fatalf("packet too short: need %d bytes for int32 at offset %d, got %d",
			offset+4, offset, len(packet))
	}

	actual := int32(binary.LittleEndian.Uint32(packet[offset:]))
	if actual != expected {
		t.Fatalf("int32 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertBytesEqual проверяет, что два байтовых слайса равны.
func AssertBytesEqual(t testing.TB, expected, actual []byte, msg string) {
	t.Helper()

	if !bytes.Equal(expected, actual) {
		t.Fatalf("%s: bytes mismatch\nexpected: %v\nactual:   %v", msg, expected, actual)
	}
}

// AssertPacketLength проверяет, что длина пакета соответствует ожидаемой.
func AssertPacketLength(t testing.TB, expected int, packet []byte) {
	t.Helper()

	actual := len(packet)
	if actual != expected {
		t.Fatalf("packet length mismatch: expected %d bytes, got %d bytes", expected, actual)
	}
}
