package viv

import "os"

// Info is the decoded shape returned by get_info, enriched with a Notes
// field per entry in verbose mode.
type Info struct {
	Format      Format
	ArchiveSize uint32
	EntryCount  uint32
	HeaderSize  uint32
	Alignment   uint32
	Filenames   []string
	// Entries is populated in verbose mode; Notes carries the alignment
	// class and name-policy round-trip status for that entry.
	Entries []InfoEntry
}

type InfoEntry struct {
	Index  int
	Offset uint32
	Size   uint32
	Name   string
	Notes  []string
}

// InfoOptions configures get_info.
type InfoOptions struct {
	Verbose       bool
	FixedEntryLen uint32
	NamePolicy    NamePolicy
	// Invalid, when true, also lists entries whose names fail the name
	// policy, rather than only the entries with valid names.
	Invalid bool
}

// GetInfo implements the get_info operation. It always decodes in
// Lenient mode internally so it succeeds on truncated files, matching
// the documented behavior of the original binding, and only uses opts
// to decide how much detail to surface.
func GetInfo(path string, opts InfoOptions) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, wrapf(ErrIO, "opening %q: %v", path, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return Info{}, wrapf(ErrIO, "stat %q: %v", path, err)
	}

	archive, err := Decode(f, fi.Size(), DecodeOptions{
		FixedEntryLen: opts.FixedEntryLen,
		NamePolicy:    opts.NamePolicy,
		Mode:          Lenient,
	})
	if err != nil {
		return Info{}, err
	}

	align := archive.Alignment()
	info := Info{
		Format:      archive.Format,
		ArchiveSize: archive.DeclaredArchiveSize,
		EntryCount:  archive.ObservedEntryCount,
		HeaderSize:  archive.DeclaredHeaderSize,
		Alignment:   align,
	}
	for i, e := range archive.Entries {
		raw, nameErr := DecodeName(e.Name, opts.NamePolicy)
		invalidName := nameErr != nil || ValidateName(raw, opts.NamePolicy) != nil
		if invalidName && !opts.Invalid {
			continue
		}
		info.Filenames = append(info.Filenames, e.Name)
		if !opts.Verbose {
			continue
		}
		entry := InfoEntry{Index: i + 1, Offset: e.Offset, Size: e.Size, Name: e.Name}
		if align != 0 && e.Offset%align != 0 {
			entry.Notes = append(entry.Notes, "breaks inferred alignment")
		}
		if invalidName {
			entry.Notes = append(entry.Notes, "name does not round-trip through the name policy")
		}
		info.Entries = append(info.Entries, entry)
	}
	return info, nil
}
