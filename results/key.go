// Package results loads raw benchmark sample files and folds them into
// per-backend comparison matrices.
//
// A result file carries its identity in its name:
//
//	<algorithm>[_kernel]_<msgNum>_<msgSize>.csv
//
// msgNum and msgSize are always the last two underscore-separated tokens.
// Algorithm names may themselves contain underscores. The _kernel marker
// tags the on-device measurement written by hardware hosts.
//
// Filename and ParseFilename round-trip for every algorithm name that does
// not itself end in _kernel. Such a name is indistinguishable from a kernel
// measurement and always parses with Kernel set.
package results

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	csvExt       = ".csv"
	kernelMarker = "_kernel"
)

// ErrNotCSV is returned for names without the .csv extension.
var ErrNotCSV = errors.New("not a csv file")

// Key identifies one raw sample file.
type Key struct {
	Algorithm string
	// Kernel is set when the name carries the _kernel marker.
	Kernel  bool
	MsgNum  int
	MsgSize int
}

// FilenameError reports a name that does not follow the grammar.
type FilenameError struct {
	Name   string
	Reason string
}

func (e *FilenameError) Error() string {
	return fmt.Sprintf("malformed result filename %q: %s", e.Name, e.Reason)
}

// Filename encodes k into the result file grammar. An Algorithm ending in
// _kernel does not round-trip; see the package documentation.
func (k Key) Filename() string {
	return k.Stem() + csvExt
}

// Stem is Filename without the extension.
func (k Key) Stem() string {
	name := k.Algorithm
	if k.Kernel {
		name += kernelMarker
	}

	return fmt.Sprintf("%s_%d_%d", name, k.MsgNum, k.MsgSize)
}

// ParseFilename decodes a base file name into a Key.
func ParseFilename(name string) (Key, error) {
	stem, ok := strings.CutSuffix(name, csvExt)
	if !ok {
		return Key{}, fmt.Errorf("%q: %w", name, ErrNotCSV)
	}

	sizeAt := strings.LastIndexByte(stem, '_')
	if sizeAt < 0 {
		return Key{}, &FilenameError{Name: name, Reason: "missing message size"}
	}

	numAt := strings.LastIndexByte(stem[:sizeAt], '_')
	if numAt < 0 {
		return Key{}, &FilenameError{Name: name, Reason: "missing message count"}
	}

	size, err := parsePositive(stem[sizeAt+1:])
	if err != nil {
		return Key{}, &FilenameError{Name: name, Reason: "message size: " + err.Error()}
	}

	num, err := parsePositive(stem[numAt+1 : sizeAt])
	if err != nil {
		return Key{}, &FilenameError{Name: name, Reason: "message count: " + err.Error()}
	}

	algorithm, kernel := strings.CutSuffix(stem[:numAt], kernelMarker)
	if algorithm == "" {
		return Key{}, &FilenameError{Name: name, Reason: "empty algorithm"}
	}

	return Key{
		Algorithm: algorithm,
		Kernel:    kernel,
		MsgNum:    num,
		MsgSize:   size,
	}, nil
}

func parsePositive(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%d is not positive", v)
	}

	return v, nil
}
