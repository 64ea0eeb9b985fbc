package viv

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/orcaman/writerseeker"
)

// ReplaceOptions configures an in-place single-entry substitution.
type ReplaceOptions struct {
	// Align overrides the alignment inferred from the existing archive;
	// 0 means "use the inferred alignment".
	Align      uint32
	NamePolicy NamePolicy
}

// Replace substitutes the entry named after replacementPath's basename
// inside the archive at archivePath, preserving every other entry's
// relative layout, and atomically commits the result in place. The
// source archive is never modified until the rebuilt archive is fully
// assembled on a temporary path.
func Replace(archivePath, replacementPath string, opts ReplaceOptions, log Logger) (*Archive, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return nil, wrapf(ErrIO, "opening %q: %v", archivePath, err)
	}
	defer src.Close()
	srcInfo, err := src.Stat()
	if err != nil {
		return nil, wrapf(ErrIO, "stat %q: %v", archivePath, err)
	}

	archive, err := Decode(src, srcInfo.Size(), DecodeOptions{
		NamePolicy: opts.NamePolicy,
		Mode:       Lenient,
	})
	if err != nil {
		return nil, wrapf(ErrIO, "decoding %q: %v", archivePath, err)
	}

	align := opts.Align
	if align == 0 {
		align = archive.Alignment()
	}

	replacementInfo, err := os.Stat(replacementPath)
	if err != nil {
		return nil, wrapf(ErrIO, "stat %q: %v", replacementPath, err)
	}
	targetName := filepath.Base(replacementPath)

	idx := -1
	for i, e := range archive.Entries {
		if e.Name == targetName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, wrapf(ErrEntryNotFound, "no entry named %q in %q", targetName, archivePath)
	}

	sizes := make([]uint32, len(archive.Entries))
	for i, e := range archive.Entries {
		sizes[i] = e.Size
	}
	sizes[idx] = uint32(replacementInfo.Size())

	rawNames := make([][]byte, len(archive.Entries))
	for i, e := range archive.Entries {
		raw, err := DecodeName(e.Name, opts.NamePolicy)
		if err != nil {
			return nil, wrapf(ErrNameInvalid, "re-deriving name %q: %v", e.Name, err)
		}
		rawNames[i] = raw
	}

	files := make([]inputFile, len(archive.Entries))
	for i := range archive.Entries {
		files[i] = inputFile{name: archive.Entries[i].Name, raw: rawNames[i], size: int64(sizes[i])}
	}
	dirEnd := directoryRegionSize(archive.Format, 0, files)
	offsets := layoutOffsets(dirEnd, align, files)

	var staged writerseeker.WriterSeeker
	if err := writeHeaderAndDirectory(&staged, EncodeOptions{
		Format:     archive.Format,
		Align:      align,
		NamePolicy: opts.NamePolicy,
	}, files, offsets, dirEnd); err != nil {
		return nil, err
	}

	out, err := renameio.TempFile("", archivePath)
	if err != nil {
		return nil, wrapf(ErrIO, "creating temp file for %q: %v", archivePath, err)
	}
	defer out.Cleanup()

	stagedReader, err := staged.Reader()
	if err != nil {
		return nil, wrapf(ErrIO, "reading staged header/directory: %v", err)
	}
	if _, err := io.Copy(out, stagedReader); err != nil {
		return nil, wrapf(ErrIO, "writing header/directory: %v", err)
	}

	buf := make([]byte, ioBufSize)
	pos := int64(dirEnd)
	for i, e := range archive.Entries {
		if pad := int64(offsets[i]) - pos; pad > 0 {
			if _, err := out.Write(make([]byte, pad)); err != nil {
				return nil, wrapf(ErrIO, "padding before entry %q: %v", e.Name, err)
			}
		}
		pos = int64(offsets[i]) + int64(sizes[i])
		if i == idx {
			in, err := os.Open(replacementPath)
			if err != nil {
				return nil, wrapf(ErrIO, "opening %q: %v", replacementPath, err)
			}
			_, err = io.CopyBuffer(out, io.LimitReader(in, int64(sizes[i])), buf)
			in.Close()
			if err != nil {
				return nil, wrapf(ErrIO, "streaming replacement %q: %v", replacementPath, err)
			}
			continue
		}
		sr := io.NewSectionReader(src, int64(e.Offset), int64(e.Size))
		if _, err := io.CopyBuffer(out, sr, buf); err != nil {
			return nil, wrapf(ErrIO, "copying entry %q from %q: %v", e.Name, archivePath, err)
		}
	}

	if err := out.CloseAtomicallyReplace(); err != nil {
		return nil, wrapf(ErrIO, "committing %q: %v", archivePath, err)
	}

	entries := make([]Entry, len(files))
	for i, f := range files {
		entries[i] = Entry{Offset: offsets[i], Size: uint32(f.size), Name: f.name}
	}
	return &Archive{
		Format:              archive.Format,
		DeclaredHeaderSize:  dirEnd,
		DeclaredEntryCount:  uint32(len(files)),
		ObservedEntryCount:  uint32(len(files)),
		Entries:             entries,
	}, nil
}
