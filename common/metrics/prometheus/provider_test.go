/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperledger-labs/modmul/common/metrics"
	"github.com/hyperledger-labs/modmul/common/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	p := prometheus.NewProvider()
	c := p.NewCounter(metrics.CounterOpts{
		Namespace:  "modmul",
		Subsystem:  "processor",
		Name:       "records_processed",
		Help:       "help",
		LabelNames: []string{"operation"},
	})
	c.With("operation", "rsa-encrypt").Add(2)
	c.With("operation", "rsa-encrypt").Add(3)
	c.With("operation", "elgamal-decrypt").Add(1)

	families, err := p.Registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "modmul_processor_records_processed", families[0].GetName())
	require.Len(t, families[0].GetMetric(), 2)

	total := 0.0
	for _, m := range families[0].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	require.Equal(t, 6.0, total)
}

func TestGaugeAndHistogram(t *testing.T) {
	p := prometheus.NewProvider()
	g := p.NewGauge(metrics.GaugeOpts{Name: "workers", Help: "help"})
	g.Set(4)
	g.Add(-1)

	h := p.NewHistogram(metrics.HistogramOpts{
		Name:       "record_duration",
		Help:       "help",
		Buckets:    []float64{0.1, 1},
		LabelNames: []string{"operation"},
	})
	h.With("operation", "rsa-encrypt").Observe(0.5)

	count, err := testutil.GatherAndCount(p.Registry)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	families, err := p.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		switch f.GetName() {
		case "workers":
			require.Equal(t, 3.0, f.GetMetric()[0].GetGauge().GetValue())
		case "record_duration":
			require.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
		default:
			t.Fatalf("unexpected metric family %s", f.GetName())
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	p := prometheus.NewProvider()
	p.NewCounter(metrics.CounterOpts{Name: "records_failed", Help: "help"}).Add(1)

	path := filepath.Join(t.TempDir(), "modmul.prom")
	err := p.WriteTextfile(path)
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "records_failed 1")

	err = p.WriteTextfile(filepath.Join(t.TempDir(), "missing", "modmul.prom"))
	require.ErrorContains(t, err, "failed writing metrics to")
}
