package viv

import (
	"bufio"
	"io"
)

// chunkSize bounds how much of the directory region is buffered at once,
// so an archive claiming millions of entries cannot force the walker to
// allocate proportionally to that claim before any of it has been
// validated.
const chunkSize = 8 * 1024

// maxEntries caps how many directory entries the walker will ever
// materialize, regardless of what a header declares.
const maxEntries = 1 << 24

// WalkOptions parameterizes a single directory traversal. The same
// traversal code serves both strict and lenient callers: only the
// severity attached to anomalies differs, never the code path.
type WalkOptions struct {
	Format        Format
	FileSize      int64
	FixedEntryLen uint32 // 0 disables the override
	NamePolicy    NamePolicy
}

// walkResult is the walker's raw output, before validation runs.
type walkResult struct {
	Entries       []Entry
	ObservedCount uint32
	HeaderSize    uint32 // fixed header plus every directory byte the walk consumed
}

// walkDirectory streams the directory region starting at dirStart,
// reading at most opts.FileSize-dirStart bytes, and returns every entry
// it could recover. It never returns an error except for the underlying
// I/O failing: a structurally broken directory yields a short, valid
// list instead.
func walkDirectory(r io.ReaderAt, dirStart int64, declaredCount uint32, opts WalkOptions) (walkResult, error) {
	limit := opts.FileSize - dirStart
	if limit < 0 {
		limit = 0
	}
	sr := io.NewSectionReader(r, dirStart, limit)
	br := bufio.NewReaderSize(sr, chunkSize)

	entryFieldWidth := 8 // offset+size, BIGF-family
	readOffsetSize := func() (uint32, uint32, error) {
		var buf [8]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return 0, 0, err
		}
		off, _ := readU32BE(buf[0:4])
		sz, _ := readU32BE(buf[4:8])
		return off, sz, nil
	}
	if opts.Format == FormatC0FB {
		entryFieldWidth = 6
		readOffsetSize = func() (uint32, uint32, error) {
			var buf [6]byte
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				return 0, 0, err
			}
			off, _ := readU24BE(buf[0:3])
			sz, _ := readU24BE(buf[3:6])
			return off, sz, nil
		}
	}

	entryLimit := declaredCount
	if entryLimit > maxEntries {
		entryLimit = maxEntries
	}

	var result walkResult
	var consumed int64

	for i := uint32(0); i < entryLimit; i++ {
		offset, size, err := readOffsetSize()
		if err != nil {
			break // truncated mid-entry: stop, keep what we have
		}
		consumed += int64(entryFieldWidth)
		nameFileOffset := dirStart + consumed

		var raw []byte
		var ok bool
		if opts.FixedEntryLen > 0 {
			raw, ok = readFixedName(br, opts.FixedEntryLen-uint32(entryFieldWidth), &consumed)
		} else {
			raw, ok = readScannedName(br, opts.NamePolicy, len(result.Entries) > 0, &consumed)
		}
		if !ok {
			// This entry's offset/size were consumed from the stream but
			// it contributes nothing to the result: i is the true count.
			break
		}

		result.Entries = append(result.Entries, Entry{
			Offset:         offset,
			Size:           size,
			NameFileOffset: uint32(nameFileOffset),
			Name:           EncodeName(raw, opts.NamePolicy),
		})
	}

	result.ObservedCount = uint32(len(result.Entries))
	if opts.Format == FormatC0FB {
		result.HeaderSize = uint32(c0fbHeaderSize) + uint32(consumed)
	} else {
		result.HeaderSize = uint32(bigFamilyHeaderSize) + uint32(consumed)
	}
	return result, nil
}

// readFixedName reads exactly width bytes (the fixed-entry-length
// override) and returns the NUL-terminated prefix. Names in this mode
// are typically non-printable and meant to be read in hex mode, so no
// character-policy check is applied here; only readScannedName checks
// name bytes against the policy while walking.
func readFixedName(br *bufio.Reader, width uint32, consumed *int64) ([]byte, bool) {
	buf := make([]byte, width)
	n, err := io.ReadFull(br, buf)
	*consumed += int64(n)
	if err != nil {
		return nil, false
	}
	if idx := indexByte(buf, 0); idx >= 0 {
		return buf[:idx], true
	}
	return buf, true // no NUL in the fixed slot: take the whole thing
}

// readScannedName scans forward for a NUL terminator one byte at a time.
// A byte that fails the name policy aborts the scan once at least one
// entry has already been accepted, signalling the caller to stop
// walking rather than fail.
func readScannedName(br *bufio.Reader, policy NamePolicy, haveAcceptedEntry bool, consumed *int64) ([]byte, bool) {
	var raw []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, false // ran out of file before a NUL: stop
		}
		*consumed++
		if b == 0 {
			return raw, true
		}
		if len(raw) >= MaxNameLen-1 {
			return nil, false // no NUL within the length limit: stop
		}
		if !policy.Hex && !nameByteOK(b, policy) && haveAcceptedEntry {
			return nil, false
		}
		raw = append(raw, b)
	}
}

func nameByteOK(b byte, policy NamePolicy) bool {
	if b == '/' || b == '\\' {
		return false
	}
	if policy.UTF8 {
		return true // full validation happens once the name is complete
	}
	return isAllowedChar(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
