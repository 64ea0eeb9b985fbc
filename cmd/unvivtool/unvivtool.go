// Program unvivtool decodes, encodes, and patches BIGF/BIGH/BIG4/C0FB
// game asset archives.
package main

import (
	"flag"
	"fmt"
	"os"
)

const mainHelp = `Usage: unvivtool d [opts] <in.viv> [<out_dir>]
       unvivtool e [opts] <out.viv> <in_files>...
       unvivtool r [opts] <archive.viv> <replacement>

Commands:
  d  decode (extract) an archive
  e  encode (pack) an archive
  r  replace a single entry in an existing archive

Run 'unvivtool <command> -help' for the flags of an individual command.
`

func funcmain() error {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, mainHelp)
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	verb, rest := args[0], args[1:]

	verbs := map[string]func([]string) error{
		"d": decodeCmd,
		"e": encodeCmd,
		"r": replaceCmd,
	}
	fn, ok := verbs[verb]
	if !ok {
		return fmt.Errorf("unknown command %q; want one of d, e, r", verb)
	}
	return fn(rest)
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
