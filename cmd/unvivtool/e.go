package main

import (
	"flag"
	"os"
	"strings"

	"github.com/distr1/vivtool/internal/viv"
)

const encodeHelp = `unvivtool e [opts] <out.viv> <in_files>...

Encode (pack) a BIGF/BIGH/BIG4/C0FB archive from a list of input files.

Example:
  % unvivtool e -fmt BIGF out.viv LICENSE README.md
`

func encodeCmd(args []string) error {
	fset := flag.NewFlagSet("e", flag.ExitOnError)
	var (
		dryRun  = fset.Bool("p", false, "dry run: validate inputs and report, write nothing")
		verbose = fset.Bool("v", false, "verbose diagnostics")
		dnl     = fset.Int("dnl", 0, "fixed directory entry length override (>=10)")
		hex     = fset.Bool("x", false, "write entry names as raw bytes decoded from hex")
		alf     = fset.Int("alf", 0, "entry offset alignment in bytes (one of 0,2,4,8,16)")
		format  = fset.String("fmt", "BIGF", "archive format: BIGF, BIGH, BIG4, or C0FB")
	)
	fset.Usage = usage(fset, encodeHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) < 2 {
		fset.Usage()
		os.Exit(2)
	}
	archivePath, inputPaths := rest[0], rest[1:]

	f, err := parseFormat(*format)
	if err != nil {
		return err
	}

	ok, err := viv.Viv(archivePath, inputPaths, viv.VivOptions{
		DryRun:        *dryRun,
		Verbose:       *verbose,
		Format:        f,
		FixedEntryLen: uint32(*dnl),
		Hex:           *hex,
		Align:         uint32(*alf),
	}, newLogger(*verbose))
	if err != nil {
		return err
	}
	if !ok {
		os.Exit(1)
	}
	return nil
}

func parseFormat(s string) (viv.Format, error) {
	switch strings.ToUpper(s) {
	case "BIGF":
		return viv.FormatBIGF, nil
	case "BIGH":
		return viv.FormatBIGH, nil
	case "BIG4":
		return viv.FormatBIG4, nil
	case "C0FB":
		return viv.FormatC0FB, nil
	default:
		return viv.FormatUnknown, viv.ErrUnsupportedFormat
	}
}
