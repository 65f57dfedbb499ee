/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"github.com/hyperledger-labs/modmul/internal/processor"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var operationDescriptions = map[string]string{
	"rsa-encrypt":     "Encrypt records of N e m, writing c",
	"rsa-decrypt":     "CRT-decrypt records of N d p q d_p d_q i_p i_q c, writing m",
	"elgamal-encrypt": "Encrypt records of p q g h m, writing c1 and c2",
	"elgamal-decrypt": "Decrypt records of p q g x c1 c2, writing m",
}

// operationCommands returns one subcommand per registered operation. The
// registry used here only provides names; the one that runs is built from
// the loaded configuration.
func operationCommands(e *env) []*cobra.Command {
	var cmds []*cobra.Command
	for _, op := range processor.NewRegistry(nil, nil).Operations() {
		name := op.Name
		cmd := &cobra.Command{
			Use:     fmt.Sprintf("%s [input file]", name),
			Aliases: op.Aliases,
			Short:   operationDescriptions[name],
			Long: fmt.Sprintf("%s.\n\nRecords of %d hexadecimal integers are read from the input file, or from\nstdin when none is given.",
				operationDescriptions[name], op.Arity),
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				// Parsing of the command line is done so silence cmd usage
				cmd.SilenceUsage = true
				output, _ := cmd.Flags().GetString("output")
				return e.runOperation(name, args, output)
			},
		}
		cmd.Flags().StringP("output", "o", "", "Output file, stdout when empty")
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (e *env) runOperation(name string, args []string, output string) error {
	src, err := e.conf.EntropySource()
	if err != nil {
		return err
	}
	op, err := processor.NewRegistry(e.conf.ExpOpts(), src).Lookup(name)
	if err != nil {
		return err
	}

	in := e.stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "failed opening input")
		}
		defer f.Close()
		in = f
	}

	out := e.stdout
	var closeOut func() error
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Wrap(err, "failed creating output")
		}
		out, closeOut = f, f.Close
	}

	p := processor.New(e.conf.Workers, e.provider)
	n, err := p.Run(e.ctx, op, in, out)
	logger.Infof("%s wrote %d records", name, n)

	if closeOut != nil {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed closing output")
		}
	}
	if merr := e.flushMetrics(); merr != nil {
		logger.Warnf("Could not write metrics: %s", merr)
	}
	return err
}
