package viv

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func writeTempInputs(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths := writeTempInputs(t, dir, map[string]string{
		"LICENSE":  "mit license text",
		"README.md": "read me please",
	})
	outPath := filepath.Join(dir, "out.viv")

	archive, err := Encode(outPath, paths, EncodeOptions{Format: FormatBIGF}, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(archive.Entries) != len(paths) {
		t.Fatalf("got %d entries, want %d", len(archive.Entries), len(paths))
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(f, fi.Size(), DecodeOptions{Mode: Strict})
	if err != nil {
		t.Fatalf("round-trip Decode: %v", err)
	}
	for _, e := range decoded.Entries {
		want, ok := map[string]string{"LICENSE": "mit license text", "README.md": "read me please"}[e.Name]
		if !ok {
			t.Fatalf("unexpected entry %q in round-tripped archive", e.Name)
		}
		got := make([]byte, e.Size)
		if _, err := f.ReadAt(got, int64(e.Offset)); err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Fatalf("entry %q: got %q, want %q", e.Name, got, want)
		}
	}
}

func TestEncodeAlignment(t *testing.T) {
	dir := t.TempDir()
	paths := writeTempInputs(t, dir, map[string]string{
		"A.BIN": "a",
		"B.BIN": "bb",
	})
	outPath := filepath.Join(dir, "out.viv")

	archive, err := Encode(outPath, paths, EncodeOptions{Format: FormatBIGF, Align: 16}, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, e := range archive.Entries {
		if e.Offset%16 != 0 {
			t.Fatalf("entry %q offset %d is not 16-aligned", e.Name, e.Offset)
		}
	}
}

func TestGatherInputsSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	paths := writeTempInputs(t, dir, map[string]string{"OK.BIN": "data"})
	paths = append(paths, filepath.Join(dir, "DOES-NOT-EXIST.BIN"))

	files, err := gatherInputs(paths, NamePolicy{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].name != "OK.BIN" {
		t.Fatalf("got %+v, want exactly OK.BIN", files)
	}
}

// TestGatherInputsSkipsUnopenable covers a path that stats fine but
// fails to open — a Unix domain socket special file stats fine as a
// non-directory entry yet returns ENXIO from open(2) — to make sure it
// is skipped with a warning rather than left in the list to blow up
// later while streaming bodies.
func TestGatherInputsSkipsUnopenable(t *testing.T) {
	dir := t.TempDir()
	paths := writeTempInputs(t, dir, map[string]string{"OK.BIN": "data"})

	sockPath := filepath.Join(dir, "UNOPENABLE.BIN")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	paths = append(paths, sockPath)

	files, err := gatherInputs(paths, NamePolicy{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].name != "OK.BIN" {
		t.Fatalf("got %+v, want exactly OK.BIN (the socket must be skipped, not fatal)", files)
	}
}

func TestGatherInputsDuplicateNameCollides(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	p1 := writeTempInputs(t, dir1, map[string]string{"SAME.BIN": "one"})[0]
	p2 := writeTempInputs(t, dir2, map[string]string{"SAME.BIN": "two"})[0]

	_, err := gatherInputs([]string{p1, p2}, NamePolicy{}, nil)
	if err == nil {
		t.Fatal("expected a collision error for two inputs resolving to the same name")
	}
}

func TestDirectoryRegionSizeFixedEntryLen(t *testing.T) {
	files := []inputFile{{raw: []byte("A.BIN")}, {raw: []byte("BB.BIN")}}
	got := directoryRegionSize(FormatBIGF, 20, files)
	want := uint32(bigFamilyHeaderSize) + 20*2
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}
