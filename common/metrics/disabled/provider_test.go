/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package disabled_test

import (
	"context"
	"strings"
	"time"

	floggingmetrics "github.com/hyperledger-labs/modmul/common/flogging/metrics"
	"github.com/hyperledger-labs/modmul/common/metrics"
	"github.com/hyperledger-labs/modmul/common/metrics/disabled"
	"github.com/hyperledger-labs/modmul/entropy"
	"github.com/hyperledger-labs/modmul/internal/processor"
	"github.com/hyperledger-labs/modmul/modexp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"
)

var _ = Describe("Provider", func() {
	var p metrics.Provider

	BeforeEach(func() {
		p = &disabled.Provider{}
	})

	It("accepts the processor metrics labelled by operation", func() {
		m := processor.NewMetrics(p)
		Expect(m.RecordsProcessed).NotTo(BeNil())
		Expect(m.RecordsFailed).NotTo(BeNil())
		Expect(m.RecordDuration).NotTo(BeNil())

		m.RecordsProcessed.With("operation", "rsa-encrypt").Add(1)
		m.RecordsFailed.With("operation", "elgamal-decrypt").Add(1)
		m.RecordDuration.With("operation", "rsa-decrypt").Observe(time.Millisecond.Seconds())
	})

	It("accepts the log entry metrics labelled by level", func() {
		o := floggingmetrics.NewObserver(p)
		e := zapcore.Entry{Level: zapcore.WarnLevel}
		o.Check(e, nil)
		o.WriteEntry(e, nil)
	})

	It("backs a processor run", func() {
		registry := processor.NewRegistry(modexp.DefaultExpOpts(), entropy.OS())
		op, err := registry.Lookup("rsa-encrypt")
		Expect(err).NotTo(HaveOccurred())

		var out strings.Builder
		n, err := processor.New(2, p).Run(context.Background(), op, strings.NewReader("CA1 11 41\n"), &out)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(out.String()).To(Equal("AE6\n"))
	})

	It("hands out gauges that ignore updates", func() {
		g := p.NewGauge(metrics.GaugeOpts{Name: "in_flight", LabelNames: []string{"operation"}})
		Expect(g).NotTo(BeNil())

		g.Set(1)
		g.With("operation", "rsa-encrypt").Add(2)
	})
})
