package viv

import "io"

// DecodeOptions configures a single decode: header parse, directory
// walk, and validation.
type DecodeOptions struct {
	// FixedEntryLen overrides the directory's entry stride; 0 means
	// "name-scanning mode", the default.
	FixedEntryLen uint32
	NamePolicy    NamePolicy
	Mode          Strictness
}

// Decode reads the header, walks the directory, and validates the
// result, producing an Archive. In Lenient mode a structurally damaged
// archive is still returned, with anomalies recorded; in Strict mode the
// same damage is returned as an error instead.
func Decode(r io.ReaderAt, fileSize int64, opts DecodeOptions) (*Archive, error) {
	hdr, err := ReadHeader(r, fileSize)
	if err != nil {
		return nil, err
	}

	dirStart := int64(bigFamilyHeaderSize)
	if hdr.Format == FormatC0FB {
		dirStart = int64(c0fbHeaderSize)
	}

	wr, err := walkDirectory(r, dirStart, hdr.EntryCount, WalkOptions{
		Format:        hdr.Format,
		FileSize:      fileSize,
		FixedEntryLen: opts.FixedEntryLen,
		NamePolicy:    opts.NamePolicy,
	})
	if err != nil {
		return nil, wrapf(ErrIO, "walking directory: %v", err)
	}

	archive := buildArchive(hdr, wr, fileSize, opts.Mode)
	if opts.Mode == Strict {
		if err := archive.Strict(); err != nil {
			return archive, err
		}
	}
	return archive, nil
}
