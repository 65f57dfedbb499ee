/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"io"

	"github.com/hyperledger-labs/modmul/common/flogging"
	floggingmetrics "github.com/hyperledger-labs/modmul/common/flogging/metrics"
	"github.com/hyperledger-labs/modmul/common/metrics"
	"github.com/hyperledger-labs/modmul/common/metrics/disabled"
	"github.com/hyperledger-labs/modmul/common/metrics/prometheus"
	"github.com/hyperledger-labs/modmul/internal/modmulconfig"
	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const progName = "modmul"

// Windows beyond this size build odd-power tables of 2^15 entries or more.
const largeWindow = 16

var logger = flogging.MustGetLogger("modmul.cmd")

// env carries what every subcommand needs once the configuration is loaded.
type env struct {
	ctx    context.Context
	viper  *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	conf     *modmulconfig.TopLevel
	provider metrics.Provider
}

// NewCommand returns the modmul root command reading records from stdin and
// writing results to stdout.
func NewCommand(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	e := &env{
		ctx:    ctx,
		viper:  modmulconfig.NewViper(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   progName,
		Short: "Modular exponentiation based RSA and ElGamal over hexadecimal records.",
		Long: `modmul reads whitespace separated hexadecimal integers, groups them into
records according to the selected operation, and writes one result per line.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "Configuration file, overriding the search of $MODMUL_CFG_PATH, . and /etc/modmul")
	flags.Int("window", 0, "Sliding window size in bits, within [1, 64]")
	flags.Bool("montgomery", true, "Run exponentiations in the Montgomery domain; requires odd moduli")
	flags.Int("workers", 0, "Number of records processed concurrently")
	flags.String("nonce-source", "", "ElGamal nonce source: os, fixed or seeded")
	flags.String("nonce", "", "Hexadecimal nonce used by the fixed nonce source")
	flags.String("seed", "", "Hexadecimal seed of the seeded nonce source")
	flags.String("log-spec", "", "Logging specification, as in info:modmul.processor=debug")
	flags.String("log-format", "", "Log format: console, json or logfmt")
	flags.String("metrics-provider", "", "Metrics provider: disabled or prometheus")
	flags.String("metrics-textfile", "", "File receiving the collected metrics in Prometheus text format")

	bindFlags(e.viper, flags, map[string]string{
		"window":           "Engine.Window",
		"montgomery":       "Engine.Montgomery",
		"workers":          "Workers",
		"nonce-source":     "Nonce.Source",
		"nonce":            "Nonce.Fixed",
		"seed":             "Nonce.Seed",
		"log-spec":         "Logging.Spec",
		"log-format":       "Logging.Format",
		"metrics-provider": "Metrics.Provider",
		"metrics-textfile": "Metrics.Textfile",
	})

	for _, c := range operationCommands(e) {
		root.AddCommand(c)
	}
	root.AddCommand(configCommand(e))
	root.AddCommand(versionCommand())

	return root
}

// bindFlags binds each flag to its configuration key. A flag only takes
// precedence over the file and the environment once it is set.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			logger.Panicf("Could not bind flag %s to %s: %s", name, key, err)
		}
	}
}

func (e *env) setup(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		e.viper.SetConfigFile(cfgFile)
	}

	conf, err := modmulconfig.Load(e.viper)
	if err != nil {
		return err
	}
	e.conf = conf

	switch conf.Metrics.Provider {
	case modmulconfig.MetricsPrometheus:
		e.provider = prometheus.NewProvider()
	default:
		e.provider = &disabled.Provider{}
	}

	err = flogging.Global.Apply(flogging.Config{
		Format:  conf.Logging.Format,
		LogSpec: conf.Logging.Spec,
		Writer:  e.stderr,
	})
	if err != nil {
		return errors.WithMessage(err, "failed initializing logging")
	}
	flogging.Global.SetObserver(floggingmetrics.NewObserver(e.provider))

	if conf.Engine.Window > largeWindow {
		logger.Warnf("Window size %d allocates up to 2^%d table entries per exponentiation; records needing more than %d are rejected",
			conf.Engine.Window, conf.Engine.Window-1, modexp.MaxTableEntries)
	}
	logger.Debugf("Engine window %d, montgomery %t, %d workers, %s nonces",
		conf.Engine.Window, conf.Engine.Montgomery, conf.Workers, conf.Nonce.Source)
	return nil
}

// flushMetrics writes the gathered metrics to the configured textfile.
func (e *env) flushMetrics() error {
	path := e.conf.Metrics.Textfile
	if path == "" {
		return nil
	}
	p, ok := e.provider.(*prometheus.Provider)
	if !ok {
		logger.Warnf("Metrics.Textfile %s ignored, metrics provider is %s", path, e.conf.Metrics.Provider)
		return nil
	}
	return p.WriteTextfile(path)
}
