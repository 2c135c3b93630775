// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package xlog provides a Logger interface and supporting functions to
control the debug output of the mcm and mar packages.

The configuration structures of these packages have a Logger field. If it
is nil nothing is logged and no formatting work is done. The
*log.Logger type of the standard library supports the interface, so
debug output can be enabled with

	cfg.Logger = log.New(os.Stderr, "mar: ", 0)
*/
package xlog

import "fmt"

// Logger is supported by *log.Logger.
type Logger interface {
	Output(calldepth int, s string) error
}

// Printf prints the arguments using the format string. If the logger
// argument is nil nothing will be printed.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// prefixLogger adds a prefix to every message.
type prefixLogger struct {
	l      Logger
	prefix string
}

func (p *prefixLogger) Output(calldepth int, s string) error {
	return p.l.Output(calldepth+1, p.prefix+s)
}

// WithPrefix returns a logger that prefixes every message. A nil
// logger stays nil.
func WithPrefix(l Logger, prefix string) Logger {
	if l == nil {
		return nil
	}
	return &prefixLogger{l: l, prefix: prefix}
}
