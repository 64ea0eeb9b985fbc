package viv

import (
	"os"
)

// UnvivOptions carries every parameter the unviv entry point accepts.
type UnvivOptions struct {
	OutDir        string
	FileIdx       int    // 0 means "unset"
	FileName      string // "" means "unset"
	DryRun        bool
	Verbose       bool
	FixedEntryLen uint32
	Hex           bool
	Strict        bool
	Overwrite     OverwritePolicy
	CustomOffset  *int64
	CustomSize    *int64
}

// Unviv decodes archivePath and extracts either a single selected entry
// (FileIdx and/or FileName set) or the whole archive, returning true on
// success — the engine API's {0,1} contract translated to a bool so
// callers use Go's ordinary error-checking idiom instead (the CLI maps
// true/false back to exit codes 0/1).
func Unviv(archivePath string, opts UnvivOptions, log Logger) (bool, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return false, wrapf(ErrIO, "opening %q: %v", archivePath, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return false, wrapf(ErrIO, "stat %q: %v", archivePath, err)
	}

	mode := Lenient
	if opts.Strict {
		mode = Strict
	}
	policy := NamePolicy{Hex: opts.Hex}
	archive, err := Decode(f, fi.Size(), DecodeOptions{
		FixedEntryLen: opts.FixedEntryLen,
		NamePolicy:    policy,
		Mode:          mode,
	})
	if err != nil {
		return false, err
	}
	for _, an := range archive.Anomalies {
		sev := "warning"
		if an.Severity == SeverityFatal {
			sev = "error"
		}
		warnf(log, "%s: %s", sev, an.Message)
	}

	if opts.DryRun {
		return true, nil
	}

	extractOpts := ExtractOptions{Overwrite: opts.Overwrite, CustomOffset: opts.CustomOffset, CustomSize: opts.CustomSize}
	if opts.FileIdx != 0 || opts.FileName != "" {
		sel := Selector{Index: opts.FileIdx, Name: opts.FileName}
		if err := ExtractOne(archive, f, opts.OutDir, sel, extractOpts, log); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := ExtractAll(archive, f, opts.OutDir, extractOpts, mode, log); err != nil {
		return false, err
	}
	return true, nil
}

// VivOptions carries every parameter the viv entry point accepts.
type VivOptions struct {
	DryRun        bool
	Verbose       bool
	Format        Format
	FixedEntryLen uint32
	Hex           bool
	Align         uint32
}

// Viv encodes inputPaths into a new archive at archivePath.
func Viv(archivePath string, inputPaths []string, opts VivOptions, log Logger) (bool, error) {
	if opts.DryRun {
		if _, err := gatherInputs(inputPaths, NamePolicy{Hex: opts.Hex}, log); err != nil {
			return false, err
		}
		return true, nil
	}
	_, err := Encode(archivePath, inputPaths, EncodeOptions{
		Format:        opts.Format,
		FixedEntryLen: opts.FixedEntryLen,
		Align:         opts.Align,
		NamePolicy:    NamePolicy{Hex: opts.Hex},
	}, log)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceCall wraps Replace with the engine API's bool-return convention.
func ReplaceCall(archivePath, replacementPath string, opts ReplaceOptions, log Logger) (bool, error) {
	if _, err := Replace(archivePath, replacementPath, opts, log); err != nil {
		return false, err
	}
	return true, nil
}
