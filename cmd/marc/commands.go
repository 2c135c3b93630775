// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kr/pretty"

	"github.com/ulikunitz/mar"
	"github.com/ulikunitz/mar/codec"
	"github.com/ulikunitz/mar/mcm"
	"github.com/ulikunitz/mar/xio"
)

// writerConfig converts the method flags into an MCM writer
// configuration.
func (opts *options) writerConfig() (cfg mcm.WriterConfig, err error) {
	if cfg.Type1, err = mcm.ParseMethod(opts.type1); err != nil {
		return cfg, err
	}
	if cfg.Type2, err = mcm.ParseMethod(opts.type2); err != nil {
		return cfg, err
	}
	cfg.MaxChunkSize = opts.chunkSize
	cfg.HuffmanUnit = byte(opts.unit)
	cfg.ApplyDefaults()
	if err = cfg.Verify(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (opts *options) archiveConfig() *mar.Config {
	cfg := &mar.Config{}
	if opts.logger != nil {
		cfg.Logger = opts.logger
	}
	return cfg
}

// openArchive opens the archive at path for reading.
func openArchive(path string, opts *options) (a *mar.Archive, f *os.File, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	a, err = mar.Open(f, mar.Read, opts.archiveConfig())
	if err != nil {
		f.Close()
		return nil, nil, &userPathError{Path: path, Err: err}
	}
	return a, f, nil
}

// selectEntries returns the entries with the given indexes or all
// entries if there are none.
func selectEntries(a *mar.Archive, args []string) ([]*mar.Entry, error) {
	if len(args) == 0 {
		return a.Entries(), nil
	}
	entries := make([]*mar.Entry, 0, len(args))
	for _, arg := range args {
		i, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("index %q is not a number", arg)
		}
		e, err := a.Entry(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func listArchives(args []string, opts *options) (failed bool) {
	for _, path := range args {
		if !listArchive(os.Stdout, path, opts) {
			failed = true
		}
	}
	return failed
}

// listArchive prints the entry table. Entries that cannot be decoded
// are reported and skipped; read errors stop the listing.
func listArchive(w io.Writer, path string, opts *options) (ok bool) {
	a, f, err := openArchive(path, opts)
	if err != nil {
		log.Print(userError(err))
		return false
	}
	defer f.Close()
	ok = true
	fmt.Fprintf(w, "%s: %d entries\n", path, len(a.Entries()))
	for _, e := range a.Entries() {
		if !opts.long {
			fmt.Fprintf(w, "%4d %10d %10d %10d\n", e.Index(),
				e.Offset(), e.Span(), e.SizeHint())
			continue
		}
		h, err := e.Header()
		var d uint64
		if err == nil {
			d, err = e.Digest()
		}
		if err != nil {
			log.Printf("%s: entry %d: %s", path, e.Index(), err)
			ok = false
			if !codec.Is(err) {
				// the archive itself cannot be read
				return false
			}
			continue
		}
		fmt.Fprintf(w, "%4d %10d %10d %10d %-7s %-7s %016x\n",
			e.Index(), e.Offset(), e.Span(), h.Size,
			h.Type1, h.Type2, d)
	}
	return ok
}

func extractArchive(args []string, opts *options) (failed bool) {
	path := args[0]
	a, f, err := openArchive(path, opts)
	if err != nil {
		log.Print(userError(err))
		return true
	}
	defer f.Close()
	entries, err := selectEntries(a, args[1:])
	if err != nil {
		log.Printf("%s: %s", path, err)
		return true
	}
	for _, e := range entries {
		if err = extractEntry(e, opts); err != nil {
			log.Printf("%s: entry %d: %s", path, e.Index(),
				userError(err))
			failed = true
		}
	}
	return failed
}

// entryName returns the file name for an extracted entry.
func entryName(i int) string {
	return fmt.Sprintf("%04d.bin", i)
}

func extractEntry(e *mar.Entry, opts *options) (err error) {
	r, err := e.Open()
	if err != nil {
		return err
	}
	stack := xio.NewWriteCloserStack()
	defer func() {
		cerr := stack.Close()
		if err == nil {
			err = cerr
		}
	}()
	var outPath, tmpPath string
	if opts.stdout {
		stack.Push(xio.NopCloser(os.Stdout))
	} else {
		outPath = filepath.Join(opts.directory, entryName(e.Index()))
		if _, err = os.Lstat(outPath); err == nil && !opts.force {
			return fmt.Errorf("file %s exists", outPath)
		}
		tmpPath = outPath + ".unpack"
		w, err := os.OpenFile(tmpPath,
			os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			return err
		}
		defer os.Remove(tmpPath)
		quit := signalHandler(tmpPath)
		defer close(quit)
		stack.Push(w)
	}
	stack.PushBuffer(64 << 10)
	if _, err = io.Copy(stack, r); err != nil {
		return err
	}
	if err = stack.Close(); err != nil {
		return err
	}
	if tmpPath != "" {
		if err = os.Rename(tmpPath, outPath); err != nil {
			return err
		}
	}
	return nil
}

// writeArchive writes the archive to a temporary file and renames it
// to path if fill succeeds.
func writeArchive(path string, opts *options, fill func(a *mar.Archive) error) error {
	if _, err := os.Lstat(path); err == nil && !opts.force {
		return fmt.Errorf("file %s exists", path)
	}
	tmpPath := path + ".pack"
	if opts.force {
		os.Remove(tmpPath)
	}
	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)
	quit := signalHandler(tmpPath)
	defer close(quit)
	a, err := mar.Open(f, mar.Create, opts.archiveConfig())
	if err != nil {
		f.Close()
		return err
	}
	if err = fill(a); err != nil {
		f.Close()
		return err
	}
	if err = a.Flush(); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// putFile writes the content of the file at path into entry e.
func putFile(e *mar.Entry, path string, cfg mcm.WriterConfig) (err error) {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	fi, err := r.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	w, err := e.Create(cfg)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// packArchive creates an archive from the files. Files that cannot be
// read are reported and skipped.
func packArchive(args []string, opts *options) (failed bool) {
	cfg, err := opts.writerConfig()
	if err != nil {
		log.Print(err)
		return true
	}
	if opts.logger != nil {
		cfg.Logger = opts.logger
	}
	path := args[0]
	err = writeArchive(path, opts, func(a *mar.Archive) error {
		for _, file := range args[1:] {
			e, err := a.CreateEntry()
			if err != nil {
				return err
			}
			if err = putFile(e, file, cfg); err != nil {
				log.Print(userError(err))
				failed = true
			}
		}
		return nil
	})
	if err != nil {
		log.Print(userError(err))
		return true
	}
	return failed
}

// updateArchive replaces entries of an archive in place.
func updateArchive(args []string, opts *options) (failed bool) {
	cfg, err := opts.writerConfig()
	if err != nil {
		log.Print(err)
		return true
	}
	if opts.logger != nil {
		cfg.Logger = opts.logger
	}
	path, pairs := args[0], args[1:]
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		log.Print("update requires pairs of INDEX and FILE")
		return true
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		log.Print(userError(err))
		return true
	}
	defer f.Close()
	a, err := mar.Open(f, mar.Update, opts.archiveConfig())
	if err != nil {
		log.Printf("%s: %s", path, err)
		return true
	}
	for k := 0; k < len(pairs); k += 2 {
		e, err := updateEntry(a, pairs[k])
		if err != nil {
			log.Printf("%s: %s", path, err)
			failed = true
			continue
		}
		if err = putFile(e, pairs[k+1], cfg); err != nil {
			log.Print(userError(err))
			failed = true
		}
	}
	if err = a.Flush(); err != nil {
		log.Printf("%s: %s", path, err)
		return true
	}
	if err = f.Close(); err != nil {
		log.Print(userError(err))
		return true
	}
	return failed
}

// updateEntry returns the entry with the given index. The index equal
// to the number of entries creates a new entry.
func updateEntry(a *mar.Archive, arg string) (*mar.Entry, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("index %q is not a number", arg)
	}
	if i == len(a.Entries()) {
		return a.CreateEntry()
	}
	return a.Entry(i)
}

// entryInfo is printed by the info command.
type entryInfo struct {
	Index    int
	Offset   int64
	Span     int64
	SizeHint uint32
	MCM      *mcm.Header
}

func infoArchive(args []string, opts *options) (failed bool) {
	path := args[0]
	a, f, err := openArchive(path, opts)
	if err != nil {
		log.Print(userError(err))
		return true
	}
	defer f.Close()
	entries, err := selectEntries(a, args[1:])
	if err != nil {
		log.Printf("%s: %s", path, err)
		return true
	}
	fmt.Printf("%s: %d entries\n", path, len(a.Entries()))
	for _, e := range entries {
		info := entryInfo{
			Index:    e.Index(),
			Offset:   e.Offset(),
			Span:     e.Span(),
			SizeHint: e.SizeHint(),
		}
		if info.MCM, err = e.Header(); err != nil {
			log.Printf("%s: entry %d: %s", path, e.Index(), err)
			failed = true
		}
		pretty.Println(info)
	}
	return failed
}

// userPathError represents a path error presentable to a user. In
// difference to os.PathError it removes the information of the
// operation returning the error.
type userPathError struct {
	Path string
	Err  error
}

// Error provides the error string for the path error.
func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *userPathError) Unwrap() error { return e.Err }

// userError removes the operation from path errors. That lstat or open
// failed is not relevant for users of marc.
func userError(err error) error {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}
