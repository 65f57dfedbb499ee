/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"github.com/hyperledger-labs/modmul/common/metadata"
	"github.com/spf13/cobra"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print modmul version.",
		Long:  `Print current version of the modmul command line tool.`,
		Args:  cobra.NoArgs,
		// the version does not depend on the configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), metadata.GetVersionInfo(progName))
			return nil
		},
	}
}
