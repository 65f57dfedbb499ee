/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package record reads and writes the whitespace separated hexadecimal
// integer streams modmul operates on. A record is a fixed number of
// consecutive integers; the number depends on the operation.
package record

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedRecord is returned for tokens that are not hexadecimal and for
// input that ends in the middle of a record.
var ErrMalformedRecord = errors.New("malformed record")

// Reader groups hexadecimal tokens into records of a fixed arity.
type Reader struct {
	scanner *bufio.Scanner
	arity   int
	index   int
}

// NewReader returns a Reader producing records of arity integers from r.
func NewReader(r io.Reader, arity int) *Reader {
	if arity < 1 {
		panic(fmt.Sprintf("record arity must be positive, got %d", arity))
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	s.Split(bufio.ScanWords)
	return &Reader{scanner: s, arity: arity}
}

// Index returns the number of records read so far.
func (r *Reader) Index() int {
	return r.index
}

// Next returns the next record. It returns io.EOF once the input is exhausted
// on a record boundary.
func (r *Reader) Next() ([]*big.Int, error) {
	values := make([]*big.Int, 0, r.arity)
	for len(values) < r.arity {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, errors.Wrapf(err, "failed reading record %d", r.index)
			}
			if len(values) == 0 {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(ErrMalformedRecord, "record %d: input ended after %d of %d values", r.index, len(values), r.arity)
		}

		v, err := ParseHex(r.scanner.Text())
		if err != nil {
			return nil, errors.WithMessagef(err, "record %d, value %d", r.index, len(values))
		}
		values = append(values, v)
	}

	r.index++
	return values, nil
}

// ParseHex parses an unprefixed hexadecimal integer in either case.
func ParseHex(token string) (*big.Int, error) {
	if token == "" || strings.HasPrefix(token, "-") || strings.HasPrefix(token, "+") {
		return nil, errors.Wrapf(ErrMalformedRecord, "invalid hexadecimal token '%s'", token)
	}
	v, ok := new(big.Int).SetString(token, 16)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedRecord, "invalid hexadecimal token '%s'", token)
	}
	return v, nil
}

// Writer emits integers as uppercase hexadecimal, one per line.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write emits every value of a record.
func (w *Writer) Write(values ...*big.Int) error {
	for _, v := range values {
		if _, err := fmt.Fprintf(w.w, "%X\n", v); err != nil {
			return errors.Wrap(err, "failed writing record")
		}
	}
	return nil
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "failed flushing output")
}
