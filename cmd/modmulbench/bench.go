/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"text/tabwriter"

	"github.com/cheggaaa/pb"
	"github.com/hyperledger-labs/modmul/internal/record"
	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/pkg/errors"
)

// benchRecord is one base^exponent mod modulus exponentiation.
type benchRecord struct {
	base, exp, mod *big.Int
}

func readRecords(in io.Reader) ([]benchRecord, error) {
	var records []benchRecord
	r := record.NewReader(in, 3)
	for {
		v, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, benchRecord{base: v[0], exp: v[1], mod: v[2]})
	}
}

// Report holds the multiplication counts of every measured window size.
type Report struct {
	Records int
	Counts  map[int]int
}

// Print writes one line per window size with the total and mean number of
// multiplications.
func (r *Report) Print(w io.Writer) error {
	var sizes []int
	for size := range r.Counts {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tMULTIPLICATIONS\tPER RECORD")
	for _, size := range sizes {
		mean := 0.0
		if r.Records > 0 {
			mean = float64(r.Counts[size]) / float64(r.Records)
		}
		fmt.Fprintf(tw, "%d\t%d\t%.1f\n", size, r.Counts[size], mean)
	}
	return tw.Flush()
}

// measure exponentiates every record with every window size, counting the
// multiplications each performs. All window sizes must agree on every
// result. Progress is drawn on progress when it is not nil.
func measure(records []benchRecord, windows []int, montgomery bool, progress io.Writer) (*Report, error) {
	report := &Report{Records: len(records), Counts: map[int]int{}}
	for _, w := range windows {
		report.Counts[w] = 0
	}

	var bar *pb.ProgressBar
	if progress != nil {
		bar = pb.New(len(records) * len(windows))
		bar.Output = progress
		bar.Start()
		defer bar.Finish()
	}

	for i, rec := range records {
		var expected *big.Int
		for _, w := range windows {
			result, count, err := countExp(rec, w, montgomery)
			if err != nil {
				return nil, errors.WithMessagef(err, "record %d, window %d", i, w)
			}
			if expected == nil {
				expected = result
			} else if expected.Cmp(result) != 0 {
				return nil, errors.Errorf("record %d: window %d yields %X, window %d yields %X", i, windows[0], expected, w, result)
			}
			report.Counts[w] += count
			if bar != nil {
				bar.Increment()
			}
		}
	}
	return report, nil
}

func countExp(rec benchRecord, w int, montgomery bool) (*big.Int, int, error) {
	if !montgomery {
		m, err := modexp.NewModulus(rec.mod)
		if err != nil {
			return nil, 0, err
		}
		c := &modexp.CountingMultiplier[*big.Int]{Multiplier: m}
		r, err := modexp.Exp[*big.Int](c, new(big.Int).Mod(rec.base, rec.mod), rec.exp, w)
		return r, c.Count, err
	}

	d, err := modexp.NewDomain(rec.mod)
	if err != nil {
		return nil, 0, err
	}
	c := &modexp.CountingMultiplier[modexp.Element]{Multiplier: d}
	r, err := modexp.Exp[modexp.Element](c, d.Convert(rec.base), rec.exp, w)
	if err != nil {
		return nil, 0, err
	}
	return d.Redux(r), c.Count, nil
}
