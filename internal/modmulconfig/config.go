/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package modmulconfig loads the modmul configuration from modmul.yaml,
// MODMUL_ prefixed environment variables and command line flags, in
// increasing order of precedence.
package modmulconfig

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"runtime"

	"github.com/hyperledger-labs/modmul/common/viperutil"
	"github.com/hyperledger-labs/modmul/entropy"
	"github.com/hyperledger-labs/modmul/modexp"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigName is the file name stem searched for in viperutil.ConfigPaths.
	ConfigName = "modmul"
	// EnvPrefix prefixes environment overrides, as in MODMUL_ENGINE_WINDOW.
	EnvPrefix = "MODMUL"
)

// Nonce sources.
const (
	NonceOS     = "os"
	NonceFixed  = "fixed"
	NonceSeeded = "seeded"
)

// Metrics providers.
const (
	MetricsDisabled   = "disabled"
	MetricsPrometheus = "prometheus"
)

// TopLevel is the root of the configuration.
type TopLevel struct {
	Engine  Engine
	Workers int
	Nonce   Nonce
	Logging Logging
	Metrics Metrics
}

// Engine selects how modular exponentiations run.
type Engine struct {
	Window     int  `yaml:"Window"`
	Montgomery bool `yaml:"Montgomery"`
}

// Nonce selects where ElGamal encryption draws its nonces from. Fixed is
// only consulted for the fixed source and Seed only for the seeded one.
type Nonce struct {
	Source string
	Fixed  *big.Int
	Seed   []byte
}

type Logging struct {
	Spec   string `yaml:"Spec"`
	Format string `yaml:"Format"`
}

type Metrics struct {
	Provider string `yaml:"Provider"`
	// Textfile, when set, receives the gathered metrics in the Prometheus
	// text format once a batch completes.
	Textfile string `yaml:"Textfile"`
}

// Defaults returns the configuration used for keys nobody sets.
func Defaults() *TopLevel {
	return &TopLevel{
		Engine: Engine{
			Window:     modexp.DefaultWindow,
			Montgomery: true,
		},
		Workers: runtime.NumCPU(),
		Nonce: Nonce{
			Source: NonceOS,
			Fixed:  big.NewInt(1),
		},
		Logging: Logging{
			Spec:   "info",
			Format: "console",
		},
		Metrics: Metrics{
			Provider: MetricsDisabled,
		},
	}
}

// NewViper returns a viper instance searching for modmul.yaml, reading
// MODMUL_ environment overrides and seeded with every default, so that each
// key can be overridden from the environment even when no file sets it.
func NewViper() *viper.Viper {
	v := viper.New()
	viperutil.InitViper(v, ConfigName, EnvPrefix)

	d := Defaults()
	v.SetDefault("Engine.Window", d.Engine.Window)
	v.SetDefault("Engine.Montgomery", d.Engine.Montgomery)
	v.SetDefault("Workers", d.Workers)
	v.SetDefault("Nonce.Source", d.Nonce.Source)
	v.SetDefault("Nonce.Fixed", fmt.Sprintf("%X", d.Nonce.Fixed))
	v.SetDefault("Nonce.Seed", "")
	v.SetDefault("Logging.Spec", d.Logging.Spec)
	v.SetDefault("Logging.Format", d.Logging.Format)
	v.SetDefault("Metrics.Provider", d.Metrics.Provider)
	v.SetDefault("Metrics.Textfile", d.Metrics.Textfile)
	return v
}

// Load reads the config file, if one can be found, and decodes the merged
// settings of v. A missing file is not an error; a malformed one is.
func Load(v *viper.Viper) (*TopLevel, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading configuration")
		}
		logger.Debugf("No %s.yaml found in %v, using defaults", ConfigName, viperutil.ConfigPaths())
	} else {
		logger.Debugf("Using configuration file %s", v.ConfigFileUsed())
	}

	conf := &TopLevel{}
	if err := viperutil.EnhancedExactUnmarshal(v, conf); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling configuration")
	}
	if conf.Nonce.Fixed == nil {
		conf.Nonce.Fixed = big.NewInt(1)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate reports the first setting that is out of range.
func (c *TopLevel) Validate() error {
	if c.Engine.Window < modexp.MinWindow || c.Engine.Window > modexp.MaxWindow {
		return errors.Errorf("Engine.Window must be within [%d, %d], got %d", modexp.MinWindow, modexp.MaxWindow, c.Engine.Window)
	}
	if c.Workers < 1 {
		return errors.Errorf("Workers must be positive, got %d", c.Workers)
	}
	switch c.Nonce.Source {
	case NonceOS:
	case NonceSeeded:
		if len(c.Nonce.Seed) == 0 {
			return errors.New("Nonce.Seed must be set for the seeded nonce source")
		}
	case NonceFixed:
		if c.Nonce.Fixed == nil || c.Nonce.Fixed.Sign() < 0 {
			return errors.Errorf("Nonce.Fixed must be a non-negative integer, got %v", c.Nonce.Fixed)
		}
	default:
		return errors.Errorf("unknown Nonce.Source '%s', expected one of [%s, %s, %s]", c.Nonce.Source, NonceOS, NonceFixed, NonceSeeded)
	}
	switch c.Metrics.Provider {
	case MetricsDisabled, MetricsPrometheus:
	default:
		return errors.Errorf("unknown Metrics.Provider '%s', expected one of [%s, %s]", c.Metrics.Provider, MetricsDisabled, MetricsPrometheus)
	}
	return nil
}

// ExpOpts returns the engine options the configuration selects.
func (c *TopLevel) ExpOpts() *modexp.ExpOpts {
	return &modexp.ExpOpts{
		Window:     c.Engine.Window,
		Montgomery: c.Engine.Montgomery,
	}
}

// EntropySource builds the nonce source the configuration selects.
func (c *TopLevel) EntropySource() (entropy.Source, error) {
	switch c.Nonce.Source {
	case NonceOS:
		return entropy.OS(), nil
	case NonceFixed:
		return entropy.NewFixedSource(c.Nonce.Fixed), nil
	case NonceSeeded:
		return entropy.NewSeededSource(c.Nonce.Seed)
	default:
		return nil, errors.Errorf("unknown Nonce.Source '%s'", c.Nonce.Source)
	}
}

// Printable is the configuration in a form suitable for YAML output, with
// the integer and byte settings rendered back to hexadecimal.
type Printable struct {
	Engine  Engine         `yaml:"Engine"`
	Workers int            `yaml:"Workers"`
	Nonce   PrintableNonce `yaml:"Nonce"`
	Logging Logging        `yaml:"Logging"`
	Metrics Metrics        `yaml:"Metrics"`
}

type PrintableNonce struct {
	Source string `yaml:"Source"`
	Fixed  string `yaml:"Fixed"`
	Seed   string `yaml:"Seed"`
}

func (c *TopLevel) Printable() *Printable {
	p := &Printable{
		Engine:  c.Engine,
		Workers: c.Workers,
		Nonce: PrintableNonce{
			Source: c.Nonce.Source,
			Seed:   hex.EncodeToString(c.Nonce.Seed),
		},
		Logging: c.Logging,
		Metrics: c.Metrics,
	}
	if c.Nonce.Fixed != nil {
		p.Nonce.Fixed = fmt.Sprintf("%X", c.Nonce.Fixed)
	}
	return p
}
