package viv

import (
	"bytes"
	"testing"
)

func TestWalkDirectoryFixedEntryLength(t *testing.T) {
	// Two entries, each an 8-byte offset+size field followed by a
	// 12-byte fixed name slot (including NUL).
	const fixedLen = 20
	var buf bytes.Buffer
	write := func(off, size uint32, name string) {
		var field [4]byte
		writeU32BE(field[:], off)
		buf.Write(field[:])
		writeU32BE(field[:], size)
		buf.Write(field[:])
		nameBuf := make([]byte, fixedLen-8)
		copy(nameBuf, name)
		buf.Write(nameBuf)
	}
	write(100, 10, "A.BIN")
	write(110, 20, "B.BIN")

	r := bytes.NewReader(buf.Bytes())
	result, err := walkDirectory(r, 0, 2, WalkOptions{
		Format:        FormatBIGF,
		FileSize:      int64(buf.Len()),
		FixedEntryLen: fixedLen,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Entries))
	}
	if result.Entries[0].Name != "A.BIN" || result.Entries[1].Name != "B.BIN" {
		t.Fatalf("unexpected names: %+v", result.Entries)
	}
}

func TestWalkDirectoryTolerantStop(t *testing.T) {
	// One well-formed entry followed by bytes that can never form a
	// valid name (no NUL before EOF): the walker should keep the first
	// entry and stop without error.
	var buf bytes.Buffer
	var field [4]byte
	writeU32BE(field[:], 100)
	buf.Write(field[:])
	writeU32BE(field[:], 10)
	buf.Write(field[:])
	buf.WriteString("GOOD.BIN")
	buf.WriteByte(0)
	buf.WriteString("garbage-with-no-terminator")

	r := bytes.NewReader(buf.Bytes())
	result, err := walkDirectory(r, 0, 5, WalkOptions{
		Format:   FormatBIGF,
		FileSize: int64(buf.Len()),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Name != "GOOD.BIN" {
		t.Fatalf("got %+v, want exactly one GOOD.BIN entry", result.Entries)
	}
}

func TestWalkDirectoryHexModeAcceptsAnyByte(t *testing.T) {
	var buf bytes.Buffer
	var field [4]byte
	writeU32BE(field[:], 100)
	buf.Write(field[:])
	writeU32BE(field[:], 10)
	buf.Write(field[:])
	buf.Write([]byte{0xff, 0x01, 'x'})
	buf.WriteByte(0)

	r := bytes.NewReader(buf.Bytes())
	result, err := walkDirectory(r, 0, 1, WalkOptions{
		Format:     FormatBIGF,
		FileSize:   int64(buf.Len()),
		NamePolicy: NamePolicy{Hex: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(result.Entries))
	}
	if result.Entries[0].Name != "ff0178" {
		t.Fatalf("Name = %q, want hex-encoded \"ff0178\"", result.Entries[0].Name)
	}
}

// TestWalkDirectoryPolicyViolationSwallowedIntoFirstEntry exercises the
// haveAcceptedEntry-gated branch in readScannedName for its "false" side:
// a disallowed byte in entry 0's name, with no earlier accepted entry to
// fall back to, is swallowed into the name rather than aborting the scan.
func TestWalkDirectoryPolicyViolationSwallowedIntoFirstEntry(t *testing.T) {
	var buf bytes.Buffer
	var field [4]byte
	writeU32BE(field[:], 100)
	buf.Write(field[:])
	writeU32BE(field[:], 10)
	buf.Write(field[:])
	buf.WriteString("A*B.BIN") // '*' fails the default character whitelist
	buf.WriteByte(0)

	r := bytes.NewReader(buf.Bytes())
	result, err := walkDirectory(r, 0, 1, WalkOptions{Format: FormatBIGF, FileSize: int64(buf.Len())})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Name != "A*B.BIN" {
		t.Fatalf("got %+v, want one entry named \"A*B.BIN\"", result.Entries)
	}
}

// TestWalkDirectoryPolicyViolationStopsAfterFirstEntry exercises the same
// branch's "true" side: once an entry has already been accepted, a
// disallowed byte in the next entry's name aborts that entry's scan and
// the walker stops, keeping only what came before it.
func TestWalkDirectoryPolicyViolationStopsAfterFirstEntry(t *testing.T) {
	var buf bytes.Buffer
	var field [4]byte
	writeU32BE(field[:], 100)
	buf.Write(field[:])
	writeU32BE(field[:], 10)
	buf.Write(field[:])
	buf.WriteString("GOOD.BIN")
	buf.WriteByte(0)
	writeU32BE(field[:], 110)
	buf.Write(field[:])
	writeU32BE(field[:], 20)
	buf.Write(field[:])
	buf.WriteString("BAD*NAME.BIN")
	buf.WriteByte(0)

	r := bytes.NewReader(buf.Bytes())
	result, err := walkDirectory(r, 0, 2, WalkOptions{Format: FormatBIGF, FileSize: int64(buf.Len())})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Name != "GOOD.BIN" {
		t.Fatalf("got %+v, want exactly one GOOD.BIN entry", result.Entries)
	}
}

func TestWalkDirectoryBoundedness(t *testing.T) {
	// declaredCount vastly exceeds maxEntries; walkDirectory must still
	// terminate and never allocate proportionally to the declared count.
	r := bytes.NewReader(nil)
	result, err := walkDirectory(r, 0, 1<<30, WalkOptions{Format: FormatBIGF, FileSize: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("empty input produced %d entries", len(result.Entries))
	}
}
