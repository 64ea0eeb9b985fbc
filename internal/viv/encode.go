package viv

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/orcaman/writerseeker"
	"golang.org/x/sync/errgroup"
)

// EncodeOptions configures a whole-archive encode.
type EncodeOptions struct {
	Format        Format
	FixedEntryLen uint32
	Align         uint32 // one of {0,2,4,8,16}
	NamePolicy    NamePolicy
}

// inputFile is one surviving, name-resolved encode input.
type inputFile struct {
	path string
	name string
	raw  []byte // decoded on-disk name bytes, pre-NUL
	size int64
}

type statOutcome struct {
	file inputFile
	skip string // non-empty: reason this path was dropped, not fatal
}

// statInputs stats and checks the readability of every candidate path
// concurrently, bounded to one worker per available core, while
// preserving input order in the returned slice regardless of goroutine
// completion order — mirroring the teacher's bounded-worker-pool idiom
// in cmd/distri/batch.go.
func statInputs(paths []string) []statOutcome {
	outcomes := make([]statOutcome, len(paths))
	indices := make(chan int, len(paths))
	for i := range paths {
		indices <- i
	}
	close(indices)

	workers := runtime.NumCPU()
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for i := range indices {
				path := paths[i]
				fi, err := os.Stat(path)
				if err != nil {
					outcomes[i] = statOutcome{skip: err.Error()}
					continue
				}
				if fi.IsDir() {
					outcomes[i] = statOutcome{skip: "is a directory"}
					continue
				}
				// A path can stat fine yet fail to open (permission
				// denied, a since-removed dentry still cached by the
				// directory listing, ...); catch that here so it is
				// skipped before any layout decision depends on it,
				// rather than aborting the whole encode later while
				// streaming bodies.
				in, err := os.Open(path)
				if err != nil {
					outcomes[i] = statOutcome{skip: err.Error()}
					continue
				}
				in.Close()
				outcomes[i] = statOutcome{file: inputFile{path: path, size: fi.Size()}}
			}
			return nil
		})
	}
	eg.Wait() // workers never return an error; nothing to propagate

	return outcomes
}

// gatherInputs stats and checks readability of every candidate path,
// then derives its on-disk name, skipping (with a warning) anything
// that fails either.
func gatherInputs(paths []string, policy NamePolicy, log Logger) ([]inputFile, error) {
	outcomes := statInputs(paths)

	var files []inputFile
	seen := map[string]bool{}
	for i, o := range outcomes {
		if o.skip != "" {
			warnf(log, "skipping %q: %s", paths[i], o.skip)
			continue
		}
		f := o.file
		base := filepath.Base(f.path)
		raw, err := DecodeName(base, policy)
		if err != nil {
			warnf(log, "skipping %q: %v", f.path, err)
			continue
		}
		if err := ValidateName(raw, policy); err != nil {
			warnf(log, "skipping %q: %v", f.path, err)
			continue
		}
		f.raw = raw
		f.name = EncodeName(raw, policy)
		if seen[f.name] {
			return nil, wrapf(ErrCollision, "duplicate entry name %q", f.name)
		}
		seen[f.name] = true
		files = append(files, f)
	}
	return files, nil
}

// directoryRegionSize computes the fixed header plus directory byte
// count for the given format and resolved inputs.
func directoryRegionSize(format Format, fixedEntryLen uint32, files []inputFile) uint32 {
	entryFixed := uint32(8)
	headerFixed := uint32(bigFamilyHeaderSize)
	if format == FormatC0FB {
		entryFixed = 6
		headerFixed = c0fbHeaderSize
	}
	if fixedEntryLen > 0 {
		return headerFixed + fixedEntryLen*uint32(len(files))
	}
	var total uint32
	for _, f := range files {
		total += entryFixed + uint32(len(f.raw)) + 1
	}
	return headerFixed + total
}

// layoutOffsets assigns each entry's body offset, honoring alignment.
func layoutOffsets(dirEnd uint32, align uint32, files []inputFile) []uint32 {
	offsets := make([]uint32, len(files))
	next := roundUp(dirEnd, align)
	for i, f := range files {
		offsets[i] = next
		next = roundUp(next+uint32(f.size), align)
	}
	return offsets
}

// Encode writes a complete archive to outputPath. It stages the header
// and directory in memory via writerseeker before streaming bodies,
// exactly as the teacher's squashfs writer accumulates metadata before
// flushing it to the destination. Once written, the file is reopened
// and re-validated in strict mode before Encode returns.
func Encode(outputPath string, paths []string, opts EncodeOptions, log Logger) (*Archive, error) {
	files, err := gatherInputs(paths, opts.NamePolicy, log)
	if err != nil {
		return nil, err
	}

	dirEnd := directoryRegionSize(opts.Format, opts.FixedEntryLen, files)
	offsets := layoutOffsets(dirEnd, opts.Align, files)

	var staged writerseeker.WriterSeeker
	if err := writeHeaderAndDirectory(&staged, opts, files, offsets, dirEnd); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, wrapf(ErrIO, "creating %q: %v", outputPath, err)
	}
	stagedReader, err := staged.Reader()
	if err != nil {
		out.Close()
		return nil, wrapf(ErrIO, "reading staged header/directory: %v", err)
	}
	if _, err := io.Copy(out, stagedReader); err != nil {
		out.Close()
		return nil, wrapf(ErrIO, "writing header/directory: %v", err)
	}

	buf := make([]byte, ioBufSize)
	pos := int64(dirEnd)
	for i, f := range files {
		if pad := int64(offsets[i]) - pos; pad > 0 {
			if _, err := out.Write(make([]byte, pad)); err != nil {
				out.Close()
				return nil, wrapf(ErrIO, "padding before %q: %v", f.path, err)
			}
		}
		pos = int64(offsets[i]) + f.size
		in, err := os.Open(f.path)
		if err != nil {
			out.Close()
			return nil, wrapf(ErrIO, "reopening %q: %v", f.path, err)
		}
		_, err = io.CopyBuffer(out, io.LimitReader(in, f.size), buf)
		in.Close()
		if err != nil {
			out.Close()
			return nil, wrapf(ErrIO, "streaming %q: %v", f.path, err)
		}
	}
	if err := out.Close(); err != nil {
		return nil, wrapf(ErrIO, "closing %q: %v", outputPath, err)
	}

	return revalidate(outputPath, opts.FixedEntryLen, opts.NamePolicy)
}

// revalidate re-opens a just-written archive and decodes it back in
// strict mode, catching any layout mistake before Encode reports success.
func revalidate(path string, fixedEntryLen uint32, policy NamePolicy) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapf(ErrIO, "reopening %q for validation: %v", path, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, wrapf(ErrIO, "stat %q: %v", path, err)
	}
	archive, err := Decode(f, fi.Size(), DecodeOptions{
		FixedEntryLen: fixedEntryLen,
		NamePolicy:    policy,
		Mode:          Strict,
	})
	if err != nil {
		return nil, wrapf(ErrIO, "freshly encoded archive %q failed strict validation: %v", path, err)
	}
	return archive, nil
}

func writeHeaderAndDirectory(w io.Writer, opts EncodeOptions, files []inputFile, offsets []uint32, dirEnd uint32) error {
	archiveSize := dirEnd
	if n := len(files); n > 0 {
		archiveSize = offsets[n-1] + uint32(files[n-1].size)
	}

	if opts.Format == FormatC0FB {
		var hdr [c0fbHeaderSize]byte
		hdr[0], hdr[1] = 0xC0, 0xFB
		hdr[2], hdr[3] = 0x80, 0x00
		writeU16BE(hdr[4:6], uint16(len(files)))
		if _, err := w.Write(hdr[:]); err != nil {
			return wrapf(ErrIO, "writing header: %v", err)
		}
		for i, f := range files {
			var entry [6]byte
			writeU24BE(entry[0:3], offsets[i])
			writeU24BE(entry[3:6], uint32(f.size))
			if _, err := w.Write(entry[:]); err != nil {
				return wrapf(ErrIO, "writing directory entry %d: %v", i, err)
			}
			if err := writeNUL(w, f.raw); err != nil {
				return err
			}
		}
		return nil
	}

	var hdr [bigFamilyHeaderSize]byte
	copy(hdr[0:4], opts.Format.magicBytes())
	writeU32BE(hdr[4:8], archiveSize)
	writeU32BE(hdr[8:12], uint32(len(files)))
	writeU32BE(hdr[12:16], dirEnd)
	if _, err := w.Write(hdr[:]); err != nil {
		return wrapf(ErrIO, "writing header: %v", err)
	}
	for i, f := range files {
		var entry [8]byte
		writeU32BE(entry[0:4], offsets[i])
		writeU32BE(entry[4:8], uint32(f.size))
		if _, err := w.Write(entry[:]); err != nil {
			return wrapf(ErrIO, "writing directory entry %d: %v", i, err)
		}
		if err := writeNUL(w, f.raw); err != nil {
			return err
		}
		if opts.FixedEntryLen > 0 {
			pad := int(opts.FixedEntryLen) - 8 - len(f.raw) - 1
			if pad > 0 {
				if _, err := w.Write(make([]byte, pad)); err != nil {
					return wrapf(ErrIO, "padding directory entry %d: %v", i, err)
				}
			}
		}
	}
	return nil
}

func writeNUL(w io.Writer, raw []byte) error {
	if _, err := w.Write(raw); err != nil {
		return wrapf(ErrIO, "writing name: %v", err)
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return wrapf(ErrIO, "writing name terminator: %v", err)
	}
	return nil
}
