package viv

import "fmt"

// Strictness selects whether validation findings are attached as
// warnings (Lenient) or cause Decode to fail outright (Strict). Both
// modes run the identical traversal and invariant checks — only the
// severity assigned to a finding differs.
type Strictness int

const (
	Lenient Strictness = iota
	Strict
)

// buildArchive runs the offset-bounds, overlap, and consistency checks
// over a walker result and assembles the Archive model, recording
// anomalies per mode.
func buildArchive(hdr Header, wr walkResult, fileSize int64, mode Strictness) *Archive {
	a := &Archive{
		Format:              hdr.Format,
		DeclaredArchiveSize: hdr.ArchiveSize,
		DeclaredEntryCount:  hdr.EntryCount,
		ObservedEntryCount:  wr.ObservedCount,
		Entries:             wr.Entries,
		FileSize:            fileSize,
	}
	if hdr.Format.isBigFamily() {
		a.DeclaredHeaderSize = hdr.HeaderSize
	} else {
		a.DeclaredHeaderSize = wr.HeaderSize
	}
	observedHeaderSize := int64(wr.HeaderSize)

	note := func(sev Severity, format string, args ...interface{}) {
		a.Anomalies = append(a.Anomalies, Anomaly{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	// Every entry must fit within the file and start at or after the
	// observed header/directory region.
	for i, e := range a.Entries {
		if int64(e.Offset) < observedHeaderSize {
			note(SeverityFatal, "entry %d offset %d precedes directory end %d", i, e.Offset, observedHeaderSize)
			continue
		}
		if int64(e.Offset)+int64(e.Size) > fileSize {
			note(SeverityFatal, "entry %d [%d,%d) escapes file of size %d", i, e.Offset, uint64(e.Offset)+uint64(e.Size), fileSize)
		}
	}

	// No overlap in directory order; gaps between entries are fine.
	for i := 0; i+1 < len(a.Entries); i++ {
		cur, next := a.Entries[i], a.Entries[i+1]
		if uint64(cur.Offset)+uint64(cur.Size) > uint64(next.Offset) {
			sev := SeverityWarning
			if mode == Strict {
				sev = SeverityFatal
			}
			note(sev, "entry %d [%d,%d) overlaps entry %d at offset %d", i, cur.Offset, uint64(cur.Offset)+uint64(cur.Size), i+1, next.Offset)
		}
	}

	// Consistency checks between declared header fields and what the
	// walker actually observed; only fatal in strict mode.
	sizeMismatch := int64(hdr.ArchiveSize) != fileSize && hdr.Format.isBigFamily()
	countMismatch := hdr.EntryCount != wr.ObservedCount
	var tailMismatch bool
	if n := len(a.Entries); n > 0 {
		last := a.Entries[n-1]
		tailMismatch = int64(last.Offset)+int64(last.Size) != fileSize
	}
	for _, mismatch := range []struct {
		bad bool
		msg string
	}{
		{sizeMismatch, fmt.Sprintf("declared archive_size %d != file size %d", hdr.ArchiveSize, fileSize)},
		{countMismatch, fmt.Sprintf("header claimed %d entries, found %d", hdr.EntryCount, wr.ObservedCount)},
		{tailMismatch, "last entry does not end exactly at file size"},
	} {
		if !mismatch.bad {
			continue
		}
		sev := SeverityWarning
		if mode == Strict {
			sev = SeverityFatal
		}
		note(sev, "%s", mismatch.msg)
	}

	return a
}
