/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func configCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			out, err := yaml.Marshal(e.conf.Printable())
			if err != nil {
				return errors.Wrap(err, "failed marshalling configuration")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
