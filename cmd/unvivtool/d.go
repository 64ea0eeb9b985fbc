package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distr1/vivtool/internal/viv"
)

const decodeHelp = `unvivtool d [opts] <in.viv> [<out_dir>]

Decode (extract) a BIGF/BIGH/BIG4/C0FB archive.

Example:
  % unvivtool d CARS.VIV cars/
`

func decodeCmd(args []string) error {
	fset := flag.NewFlagSet("d", flag.ExitOnError)
	var (
		fileIdx  = fset.Int("i", 0, "extract only the entry at this 1-based index")
		fileName = fset.String("f", "", "extract only the entry with this name (wins over -i)")
		dryRun   = fset.Bool("p", false, "dry run: validate and report, write nothing")
		verbose  = fset.Bool("v", false, "verbose diagnostics")
		aot      = fset.Bool("aot", false, "rename on output collision instead of overwriting")
		dnl      = fset.Int("dnl", 0, "fixed directory entry length override (>=10)")
		hex      = fset.Bool("x", false, "interpret entry names as hex-escaped bytes")
		strict   = fset.Bool("strict", false, "fail on any directory inconsistency instead of recovering")
		we       = fset.Bool("we", false, "write a re-encode command to <archive>.txt")
	)
	fset.Usage = usage(fset, decodeHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 1 {
		fset.Usage()
		os.Exit(2)
	}
	archivePath := rest[0]
	outDir := "."
	if len(rest) >= 2 {
		outDir = rest[1]
	}
	if !*dryRun {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}

	overwrite := viv.Overwrite
	if *aot {
		overwrite = viv.Rename
	}

	ok, err := viv.Unviv(archivePath, viv.UnvivOptions{
		OutDir:        outDir,
		FileIdx:       *fileIdx,
		FileName:      *fileName,
		DryRun:        *dryRun,
		Verbose:       *verbose,
		FixedEntryLen: uint32(*dnl),
		Hex:           *hex,
		Strict:        *strict,
		Overwrite:     overwrite,
	}, newLogger(*verbose))
	if err != nil {
		return err
	}
	if !ok {
		os.Exit(1)
	}

	if *we && !*dryRun {
		if err := writeReencodeCommand(archivePath, outDir, uint32(*dnl), *hex); err != nil {
			return err
		}
	}
	return nil
}

// writeReencodeCommand writes a one-line unvivtool e invocation that would
// rebuild archivePath from its just-extracted contents, to archivePath
// with its extension replaced by .txt.
func writeReencodeCommand(archivePath, outDir string, fixedEntryLen uint32, hex bool) error {
	info, err := viv.GetInfo(archivePath, viv.InfoOptions{
		FixedEntryLen: fixedEntryLen,
		NamePolicy:    viv.NamePolicy{Hex: hex},
	})
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf("unvivtool e -fmt %s -alf %d", info.Format, info.Alignment)
	if fixedEntryLen != 0 {
		cmd += fmt.Sprintf(" -dnl %d", fixedEntryLen)
	}
	if hex {
		cmd += " -x"
	}
	cmd += fmt.Sprintf(" %s", archivePath)
	for _, name := range info.Filenames {
		cmd += fmt.Sprintf(" %s", filepath.Join(outDir, name))
	}
	txtPath := strings.TrimSuffix(archivePath, filepath.Ext(archivePath)) + ".txt"
	return os.WriteFile(txtPath, []byte(cmd+"\n"), 0644)
}
