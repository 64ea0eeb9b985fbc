package viv

import (
	"io"
	"os"
	"path/filepath"
)

// ioBufSize is the streaming copy buffer used for every entry body.
// No entry is ever materialized whole in memory.
const ioBufSize = 8 * 1024

// Selector picks one entry out of an archive: a 1-based index, a name,
// or both (name wins when both are set).
type Selector struct {
	Index int // 1-based; 0 means "unset"
	Name  string
}

// ExtractOptions configures a single-entry or whole-archive extraction.
type ExtractOptions struct {
	Overwrite OverwritePolicy
	// CustomOffset/CustomSize override the directory's offset/size for a
	// single-entry extraction, to recover a file whose directory entry is
	// suspect but whose data is intact. Only used by ExtractOne.
	CustomOffset *int64
	CustomSize   *int64
}

// ExtractAll writes every entry in a to outDir, in directory order. In
// Strict mode the first per-entry failure aborts the whole operation; in
// Lenient mode extraction continues past failures, each logged as a
// warning.
func ExtractAll(a *Archive, r io.ReaderAt, outDir string, opts ExtractOptions, mode Strictness, log Logger) error {
	for i := range a.Entries {
		if err := extractEntry(r, outDir, a.Entries[i], a.Entries[i].Offset, a.Entries[i].Size, opts.Overwrite, log); err != nil {
			if mode == Strict {
				return wrapf(ErrIO, "extracting %q: %v", a.Entries[i].Name, err)
			}
			warnf(log, "skipping %q: %v", a.Entries[i].Name, err)
		}
	}
	return nil
}

// ExtractOne extracts a single selected entry, optionally reading from a
// caller-supplied offset/size window instead of the directory's own.
func ExtractOne(a *Archive, r io.ReaderAt, outDir string, sel Selector, opts ExtractOptions, log Logger) error {
	e, err := findEntry(a, sel)
	if err != nil {
		return err
	}
	offset, size := e.Offset, e.Size
	if opts.CustomOffset != nil {
		offset = uint32(*opts.CustomOffset)
	}
	if opts.CustomSize != nil {
		size = uint32(*opts.CustomSize)
	}
	return extractEntry(r, outDir, e, offset, size, opts.Overwrite, log)
}

func findEntry(a *Archive, sel Selector) (Entry, error) {
	if sel.Name != "" {
		for _, e := range a.Entries {
			if e.Name == sel.Name {
				return e, nil
			}
		}
		return Entry{}, wrapf(ErrEntryNotFound, "no entry named %q", sel.Name)
	}
	if sel.Index >= 1 && sel.Index <= len(a.Entries) {
		return a.Entries[sel.Index-1], nil
	}
	return Entry{}, wrapf(ErrEntryNotFound, "index %d out of range [1,%d]", sel.Index, len(a.Entries))
}

func extractEntry(r io.ReaderAt, outDir string, e Entry, offset, size uint32, policy OverwritePolicy, log Logger) error {
	if int64(offset)+int64(size) < 0 {
		return wrapf(ErrDirectoryCorrupt, "entry %q has an invalid window", e.Name)
	}

	path := filepath.Join(outDir, e.Name)
	path, err := resolveOutputPath(path, policy, log)
	if err != nil {
		return err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return wrapf(ErrIO, "creating %q: %v", path, err)
	}
	defer out.Close()

	sr := io.NewSectionReader(r, int64(offset), int64(size))
	buf := make([]byte, ioBufSize)
	if _, err := io.CopyBuffer(out, sr, buf); err != nil {
		return wrapf(ErrIO, "writing %q: %v", path, err)
	}
	if err := out.Close(); err != nil {
		return wrapf(ErrIO, "closing %q: %v", path, err)
	}
	return nil
}

func resolveOutputPath(path string, policy OverwritePolicy, log Logger) (string, error) {
	_, statErr := os.Lstat(path)
	collides := statErr == nil
	if !collides {
		return path, nil
	}
	switch policy {
	case Overwrite:
		warnf(log, "overwriting existing file %q", path)
		return path, nil
	case Rename:
		renamed, ok := AutoRename(path, func(p string) bool {
			_, err := os.Lstat(p)
			return err == nil
		})
		if !ok {
			warnf(log, "skipping %q: could not find a free name after 1000 attempts", path)
			return "", wrapf(ErrCollision, "no free name for %q", path)
		}
		return renamed, nil
	default:
		return "", wrapf(ErrCollision, "%q already exists", path)
	}
}
