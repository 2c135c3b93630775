// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command marc lists, extracts, packs and updates MAR archives.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ogier/pflag"
)

const usageStr = `Usage: marc COMMAND [OPTION]... ARCHIVE [ARG]...
List, extract, create or update MAR archives.

Commands:
  list ARCHIVE...                 list the entries of the archives
  extract ARCHIVE [INDEX]...      extract all or the given entries
  pack ARCHIVE FILE...            create an archive from the files
  update ARCHIVE INDEX FILE...    replace entries; INDEX equal to the
                                  entry count appends an entry
  info ARCHIVE [INDEX]...         print the archive and MCM headers

Options:
  -h, --help         give this help
  -v, --verbose      trace archive and chunk operations
  -l, --long         list decoded sizes, methods and digests (list)
  -C, --directory    output directory (extract); default is .
  -c, --stdout       write entries to standard output (extract)
  -f, --force        overwrite existing files (extract, pack)
  -1, --type1 M      outer method none, rle, lzss or huffman (pack,
                     update); default is lzss
  -2, --type2 M      inner method; default is none
  -s, --chunk-size N maximum decoded chunk size; default is 8192
  -u, --unit N       Huffman data unit 4 or 8; default selects the
                     smaller output

Extracted entries are named NNNN.bin after their index.
`

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

type options struct {
	verbose   bool
	long      bool
	directory string
	stdout    bool
	force     bool
	type1     string
	type2     string
	chunkSize int
	unit      int
	logger    *log.Logger
}

type command func(args []string, opts *options) (failed bool)

var commands = map[string]command{
	"list":    listArchives,
	"extract": extractArchive,
	"pack":    packArchive,
	"update":  updateArchive,
	"info":    infoArchive,
}

func main() {
	// setup logger
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	if len(os.Args) < 2 {
		log.Fatalf("for help, type %s -h", cmdName)
	}
	name := os.Args[1]
	switch name {
	case "-h", "--help", "help":
		usage(os.Stdout)
		os.Exit(0)
	}
	cmd, ok := commands[name]
	if !ok {
		log.Fatalf("unknown command %q; for help, type %s -h",
			name, cmdName)
	}

	// initialize flags
	flags := pflag.NewFlagSet(cmdName+" "+name, pflag.ExitOnError)
	flags.SetInterspersed(true)
	flags.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		help = flags.BoolP("help", "h", false, "")
		opts options
	)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "")
	flags.BoolVarP(&opts.long, "long", "l", false, "")
	flags.StringVarP(&opts.directory, "directory", "C", ".", "")
	flags.BoolVarP(&opts.stdout, "stdout", "c", false, "")
	flags.BoolVarP(&opts.force, "force", "f", false, "")
	flags.StringVarP(&opts.type1, "type1", "1", "lzss", "")
	flags.StringVarP(&opts.type2, "type2", "2", "none", "")
	flags.IntVarP(&opts.chunkSize, "chunk-size", "s", 0, "")
	flags.IntVarP(&opts.unit, "unit", "u", 0, "")

	// process arguments
	flags.Parse(os.Args[2:])
	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if flags.NArg() == 0 {
		log.Fatalf("%s: archive missing; for help, type %s -h",
			name, cmdName)
	}
	if opts.verbose {
		opts.logger = log.New(os.Stderr, cmdName+": ", 0)
	}

	if failed := cmd(flags.Args(), &opts); failed {
		os.Exit(1)
	}
}
