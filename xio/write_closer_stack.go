// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xio provides tools to handle I/O operations. The
// [WriteCloserStack] type combines multiple WriteClosers, for instance an
// output file and an MCM writer, into a single [io.WriteCloser].
package xio

import (
	"bufio"
	"errors"
	"io"
)

// WriteCloserStack allows to support multiple WriteClosers to be handled as
// single WriteCloser.
type WriteCloserStack struct {
	Stack []io.WriteCloser
}

// NewWriteCloserStack creates a new WriteCloserStack. It will have an empty
// stack.
func NewWriteCloserStack() *WriteCloserStack {
	return &WriteCloserStack{}
}

// Write writes data to the top WriteCloser in the stack. If the stack is empty
// Write will always succeed.
func (w *WriteCloserStack) Write(p []byte) (n int, err error) {
	k := len(w.Stack)
	if k == 0 {
		return len(p), nil
	}
	return w.Stack[k-1].Write(p)
}

// Close closes all writers on the stack from the top to the bottom and
// combines the errors. It will clear the stack.
func (w *WriteCloserStack) Close() error {
	var errs []error
	for k := len(w.Stack) - 1; k >= 0; k-- {
		err := w.Stack[k].Close()
		errs = append(errs, err)
	}
	w.Stack = nil
	return errors.Join(errs...)
}

// Push adds a new WriteCloser to the top of the stack. It panics if the
// WriteCloser is nil.
func (w *WriteCloserStack) Push(wc io.WriteCloser) {
	if wc == nil {
		panic("cannot push nil WriteCloser onto stack")
	}
	w.Stack = append(w.Stack, wc)
}

// PushBuffer pushes a buffered writer on top of the stack. It writes
// to the current top and is flushed on Close.
func (w *WriteCloserStack) PushBuffer(size int) {
	w.Push(&bufWriteCloser{bufio.NewWriterSize(
		&stackWriter{w.Stack}, size)})
}

// stackWriter writes to the top of a fixed stack.
type stackWriter struct {
	stack []io.WriteCloser
}

func (s *stackWriter) Write(p []byte) (n int, err error) {
	k := len(s.stack)
	if k == 0 {
		return len(p), nil
	}
	return s.stack[k-1].Write(p)
}

type bufWriteCloser struct {
	*bufio.Writer
}

func (b *bufWriteCloser) Close() error { return b.Flush() }

// NopCloser returns a WriteCloser whose Close method does nothing. It
// is used to push standard output onto a stack.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
