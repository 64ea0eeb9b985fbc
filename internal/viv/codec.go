package viv

import "golang.org/x/xerrors"

// Byte-at-a-time fixed-width integer codec. Values are assembled and
// disassembled one byte at a time rather than by punning the buffer to a
// struct, so neither alignment nor host endianness ever leaks into the
// on-disk representation.

func readU16BE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, xerrors.Errorf("read u16be: %w", ErrTruncated)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func readU16LE(b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, xerrors.Errorf("read u16le: %w", ErrTruncated)
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

func readU24BE(b []byte) (uint32, error) {
	if len(b) < 3 {
		return 0, xerrors.Errorf("read u24be: %w", ErrTruncated)
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func readU32BE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, xerrors.Errorf("read u32be: %w", ErrTruncated)
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func writeU16BE(b []byte, v uint16) {
	_ = b[1]
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

func writeU16LE(b []byte, v uint16) {
	_ = b[1]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func writeU24BE(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func writeU32BE(b []byte, v uint32) {
	_ = b[3]
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
