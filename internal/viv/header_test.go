package viv

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadHeaderRejectsImplausibleEntryCount(t *testing.T) {
	raw := buildBIGF(t, FormatBIGF, []testEntry{{"A.BIN", []byte("x")}})
	writeU32BE(raw[8:12], 1<<20) // entry_count wildly implausible for this file size

	_, err := ReadHeader(bytes.NewReader(raw), int64(len(raw)))
	if !errors.Is(err, ErrHeaderOutOfRange) {
		t.Fatalf("err = %v, want ErrHeaderOutOfRange", err)
	}
}

func TestReadHeaderRejectsOversizedHeaderSize(t *testing.T) {
	raw := buildBIGF(t, FormatBIGF, []testEntry{{"A.BIN", []byte("x")}})
	writeU32BE(raw[12:16], uint32(len(raw))+1000)

	_, err := ReadHeader(bytes.NewReader(raw), int64(len(raw)))
	if !errors.Is(err, ErrHeaderOutOfRange) {
		t.Fatalf("err = %v, want ErrHeaderOutOfRange", err)
	}
}

func TestReadHeaderAllFourMagics(t *testing.T) {
	for _, format := range []Format{FormatBIGF, FormatBIGH, FormatBIG4} {
		raw := buildBIGF(t, format, []testEntry{{"A.BIN", []byte("x")}})
		hdr, err := ReadHeader(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			t.Fatalf("%v: %v", format, err)
		}
		if hdr.Format != format {
			t.Fatalf("got %v, want %v", hdr.Format, format)
		}
	}

	raw := buildC0FB(t, []testEntry{{"A.BIN", []byte("x")}})
	hdr, err := ReadHeader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Format != FormatC0FB {
		t.Fatalf("got %v, want C0FB", hdr.Format)
	}
}
