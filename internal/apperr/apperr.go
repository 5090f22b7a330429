/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package apperr holds the error kinds muse reports. Only Configuration
// errors end a run; every other kind is recorded against the item that
// failed and the batch moves on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	Configuration
	Parse
	IO
	Generation
	Validation
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Parse:
		return "parse"
	case IO:
		return "io"
	case Generation:
		return "generation"
	case Validation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a failure tied to one operation and, usually, one input item
// (a sample path, an image id, a persona choice).
type Error struct {
	Kind Kind
	Op   string
	Item string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Item != "" {
		msg += " " + e.Item
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, item string, err error) *Error {
	return &Error{Kind: kind, Op: op, Item: item, Err: err}
}

func Errorf(kind Kind, op, item, format string, args ...any) *Error {
	return New(kind, op, item, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Fatal reports whether err should stop the whole run.
func Fatal(err error) bool {
	return Is(err, Configuration)
}
