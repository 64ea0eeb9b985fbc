package viv

import "io"

// Header is the decoded fixed-size prologue, before the directory is
// walked. For C0FB, HeaderSize is not authoritative on disk and is left
// zero here; the walker synthesizes it once the directory length is
// known.
type Header struct {
	Format      Format
	ArchiveSize uint32
	EntryCount  uint32
	HeaderSize  uint32
}

const (
	bigFamilyHeaderSize = 16
	c0fbHeaderSize      = 6
)

// ReadHeader detects the format from the leading magic bytes and decodes
// the fixed header that follows. fileSize is used to apply the
// entry-count/header-size bounds checks inline, since a corrupt declared
// size is a header-level defect, not a directory-level one.
func ReadHeader(r io.ReaderAt, fileSize int64) (Header, error) {
	var magic [4]byte
	n, err := r.ReadAt(magic[:], 0)
	if err != nil && err != io.EOF {
		return Header{}, wrapf(ErrIO, "reading magic: %v", err)
	}
	if n < 4 {
		return Header{}, wrapf(ErrTruncated, "file too short for magic (%d bytes)", n)
	}

	switch {
	case string(magic[:]) == "BIGF":
		return readBigFamilyHeader(r, fileSize, FormatBIGF)
	case string(magic[:]) == "BIGH":
		return readBigFamilyHeader(r, fileSize, FormatBIGH)
	case string(magic[:]) == "BIG4":
		return readBigFamilyHeader(r, fileSize, FormatBIG4)
	case magic[0] == 0xC0 && magic[1] == 0xFB:
		return readC0FBHeader(r, fileSize)
	default:
		return Header{}, wrapf(ErrBadMagic, "unrecognized magic %x", magic[:])
	}
}

func readBigFamilyHeader(r io.ReaderAt, fileSize int64, format Format) (Header, error) {
	if fileSize < bigFamilyHeaderSize {
		return Header{}, wrapf(ErrTruncated, "file shorter than %d-byte header", bigFamilyHeaderSize)
	}
	var buf [bigFamilyHeaderSize]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		return Header{}, wrapf(ErrIO, "reading header: %v", err)
	}

	archiveSize, err := readU32BE(buf[4:8])
	if err != nil {
		return Header{}, wrapf(ErrTruncated, "archive_size: %v", err)
	}
	entryCount, err := readU32BE(buf[8:12])
	if err != nil {
		return Header{}, wrapf(ErrTruncated, "entry_count: %v", err)
	}
	headerSize, err := readU32BE(buf[12:16])
	if err != nil {
		return Header{}, wrapf(ErrTruncated, "header_size: %v", err)
	}

	// Invariant 2: loose lower bound on entry_count vs file_size.
	if uint64(entryCount)*10+16 > uint64(fileSize) {
		return Header{}, wrapf(ErrHeaderOutOfRange, "entry_count %d implausible for file of %d bytes", entryCount, fileSize)
	}
	// Invariant 3: header_size bounds.
	maxHeaderSize := uint64(entryCount)*(8+255) + 16
	if uint64(headerSize) > maxHeaderSize || uint64(headerSize) > uint64(fileSize) {
		return Header{}, wrapf(ErrHeaderOutOfRange, "header_size %d out of range (max %d, file %d)", headerSize, maxHeaderSize, fileSize)
	}

	return Header{
		Format:      format,
		ArchiveSize: archiveSize,
		EntryCount:  entryCount,
		HeaderSize:  headerSize,
	}, nil
}

func readC0FBHeader(r io.ReaderAt, fileSize int64) (Header, error) {
	if fileSize < c0fbHeaderSize {
		return Header{}, wrapf(ErrTruncated, "file shorter than %d-byte C0FB header", c0fbHeaderSize)
	}
	var buf [c0fbHeaderSize]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		return Header{}, wrapf(ErrIO, "reading header: %v", err)
	}
	// buf[2:4] is the 0x8000 tag; not validated beyond presence.
	entryCount, err := readU16BE(buf[4:6])
	if err != nil {
		return Header{}, wrapf(ErrTruncated, "entry_count: %v", err)
	}
	if uint64(entryCount)*6+6 > uint64(fileSize) {
		return Header{}, wrapf(ErrHeaderOutOfRange, "entry_count %d implausible for file of %d bytes", entryCount, fileSize)
	}
	return Header{
		Format:      FormatC0FB,
		ArchiveSize: uint32(fileSize),
		EntryCount:  uint32(entryCount),
		HeaderSize:  0, // synthesized by the walker
	}, nil
}
