package main

import (
	"flag"
	"os"

	"github.com/distr1/vivtool/internal/viv"
)

const replaceHelp = `unvivtool r [opts] <archive.viv> <replacement>

Replace a single entry of an existing archive in place. The entry whose
name matches <replacement>'s basename is substituted; every other entry
keeps its relative layout. The archive is updated atomically.

Example:
  % unvivtool r CARS.VIV newtexture.tga
`

func replaceCmd(args []string) error {
	fset := flag.NewFlagSet("r", flag.ExitOnError)
	var (
		verbose = fset.Bool("v", false, "verbose diagnostics")
		hex     = fset.Bool("x", false, "interpret entry names as hex-escaped bytes")
		alf     = fset.Int("alf", 0, "entry offset alignment override in bytes (one of 0,2,4,8,16)")
	)
	fset.Usage = usage(fset, replaceHelp)
	fset.Parse(args)

	rest := fset.Args()
	if len(rest) != 2 {
		fset.Usage()
		os.Exit(2)
	}
	archivePath, replacementPath := rest[0], rest[1]

	ok, err := viv.ReplaceCall(archivePath, replacementPath, viv.ReplaceOptions{
		Align:      uint32(*alf),
		NamePolicy: viv.NamePolicy{Hex: *hex},
	}, newLogger(*verbose))
	if err != nil {
		return err
	}
	if !ok {
		os.Exit(1)
	}
	return nil
}
