/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperledger-labs/modmul/common/metadata"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app = kingpin.New("modmulbench", "Count the modular multiplications sliding window exponentiation performs for each window size.\n\n"+
		"Counts include the squaring and products that build the odd-power table. The table only holds the powers "+
		"up to the largest window digit of each exponent, so short or sparse exponents cost fewer than the "+
		"2^(w-1) table products a full table would need.")

	windows    = app.Flag("window", "Window size to measure; repeatable.").Short('w').Default("1", "2", "3", "4", "5", "6").Ints()
	montgomery = app.Flag("montgomery", "Multiply in the Montgomery domain; requires odd moduli.").Default("true").Bool()
	progress   = app.Flag("progress", "Show a progress bar on stderr.").Bool()
	inputFile  = app.Arg("input", "File of 'base exponent modulus' hexadecimal records; stdin when omitted.").ExistingFile()

	args = os.Args[1:]
)

func main() {
	app.Version(metadata.GetVersionInfo("modmulbench"))

	if _, err := app.Parse(args); err != nil {
		kingpin.Fatalf("parsing arguments: %s. Try --help", err)
		return
	}

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			kingpin.Fatalf("opening input: %s", err)
			return
		}
		defer f.Close()
		in = f
	}

	records, err := readRecords(in)
	if err != nil {
		kingpin.Fatalf("%s", err)
		return
	}

	var bar io.Writer
	if *progress {
		bar = os.Stderr
	}
	report, err := measure(records, *windows, *montgomery, bar)
	if err != nil {
		kingpin.Fatalf("%s", err)
		return
	}

	if err := report.Print(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
