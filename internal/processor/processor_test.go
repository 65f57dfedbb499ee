/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package processor_test

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/hyperledger-labs/modmul/common/flogging"
	"github.com/hyperledger-labs/modmul/common/metrics/disabled"
	"github.com/hyperledger-labs/modmul/common/metrics/metricsfakes"
	"github.com/hyperledger-labs/modmul/entropy"
	"github.com/hyperledger-labs/modmul/internal/processor"
	"github.com/hyperledger-labs/modmul/internal/record"
	"github.com/hyperledger-labs/modmul/modexp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/pkg/errors"
)

// echo returns its single input after a delay that shrinks as the input
// grows, so later records tend to finish first.
func echo(failAt int64) *processor.Operation {
	return &processor.Operation{
		Name:  "echo",
		Arity: 1,
		Apply: func(v []*big.Int) ([]*big.Int, error) {
			if v[0].Int64() == failAt {
				return nil, errors.New("refusing record")
			}
			time.Sleep(time.Duration(100-v[0].Int64()%100) * 50 * time.Microsecond)
			return []*big.Int{v[0]}, nil
		},
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func hexLines(from, to int) string {
	var lines []string
	for i := from; i < to; i++ {
		lines = append(lines, fmt.Sprintf("%X", i))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

var _ = Describe("Processor", func() {
	var (
		p   *processor.Processor
		out *bytes.Buffer
	)

	BeforeEach(func() {
		p = processor.New(8, &disabled.Provider{})
		out = &bytes.Buffer{}
	})

	It("defaults to one worker per CPU", func() {
		Expect(processor.New(0, &disabled.Provider{}).Workers).To(BeNumerically(">=", 1))
	})

	It("writes results in input order", func() {
		n, err := p.Run(context.Background(), echo(-1), strings.NewReader(hexLines(0, 500)), out)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(500))
		Expect(out.String()).To(Equal(hexLines(0, 500)))
	})

	It("handles empty input", func() {
		n, err := p.Run(context.Background(), echo(-1), strings.NewReader("\n"), out)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))
		Expect(out.String()).To(BeEmpty())
	})

	It("writes every record before a failing one", func() {
		n, err := p.Run(context.Background(), echo(37), strings.NewReader(hexLines(0, 200)), out)
		Expect(err).To(MatchError("echo failed: record 37: refusing record"))
		Expect(n).To(Equal(37))
		Expect(out.String()).To(Equal(hexLines(0, 37)))
	})

	It("stops at malformed input", func() {
		input := hexLines(0, 12) + "G0\n" + hexLines(13, 40)
		n, err := p.Run(context.Background(), echo(-1), strings.NewReader(input), out)
		Expect(errors.Is(err, record.ErrMalformedRecord)).To(BeTrue())
		Expect(err.Error()).To(HavePrefix("echo failed: record 12, value 0"))
		Expect(n).To(Equal(12))
		Expect(out.String()).To(Equal(hexLines(0, 12)))
	})

	It("reports a truncated final record", func() {
		op := &processor.Operation{
			Name:  "pair",
			Arity: 2,
			Apply: func(v []*big.Int) ([]*big.Int, error) {
				return []*big.Int{new(big.Int).Add(v[0], v[1])}, nil
			},
		}
		n, err := p.Run(context.Background(), op, strings.NewReader("1 2\n3 4\n5\n"), out)
		Expect(errors.Is(err, record.ErrMalformedRecord)).To(BeTrue())
		Expect(n).To(Equal(2))
		Expect(out.String()).To(Equal("3\n7\n"))
	})

	It("honors cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Run(ctx, echo(-1), strings.NewReader(hexLines(0, 100)), out)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("reports a failed flush when cancelled", func() {
		logs := gbytes.NewBuffer()
		old := flogging.SetWriter(logs)
		defer flogging.SetWriter(old)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		blocked := make(chan struct{})
		release := make(chan struct{})
		op := &processor.Operation{
			Name:  "hold",
			Arity: 1,
			Apply: func(v []*big.Int) ([]*big.Int, error) {
				if v[0].Int64() == 2 {
					close(blocked)
					<-release
				}
				return v, nil
			},
		}

		go func() {
			<-blocked
			time.Sleep(50 * time.Millisecond)
			cancel()
			time.Sleep(10 * time.Millisecond)
			close(release)
		}()

		_, err := p.Run(ctx, op, strings.NewReader("1 2 3"), failingWriter{})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(logs).To(gbytes.Say("Could not flush 1 records ahead of cancellation: failed flushing output: disk full"))
	})

	It("matches sequential evaluation for RSA encryption", func() {
		rng := rand.New(rand.NewSource(5))
		registry := processor.NewRegistry(modexp.DefaultExpOpts(), entropy.OS())
		op, err := registry.Lookup("stage1")
		Expect(err).NotTo(HaveOccurred())

		var input, expected strings.Builder
		for i := 0; i < 64; i++ {
			n := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), 256))
			n.SetBit(n, 0, 1)
			e := big.NewInt(65537)
			m := new(big.Int).Rand(rng, n)
			fmt.Fprintf(&input, "%X %X %x\n", n, e, m)
			fmt.Fprintf(&expected, "%X\n", new(big.Int).Exp(m, e, n))
		}

		count, err := p.Run(context.Background(), op, strings.NewReader(input.String()), out)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(64))
		Expect(out.String()).To(Equal(expected.String()))
	})

	Describe("metrics", func() {
		var (
			provider  *metricsfakes.Provider
			processed *metricsfakes.Counter
			failed    *metricsfakes.Counter
			duration  *metricsfakes.Histogram
			clock     *fakeclock.FakeClock
		)

		BeforeEach(func() {
			processed = &metricsfakes.Counter{}
			processed.WithReturns(processed)
			failed = &metricsfakes.Counter{}
			failed.WithReturns(failed)
			duration = &metricsfakes.Histogram{}
			duration.WithReturns(duration)

			provider = &metricsfakes.Provider{}
			provider.NewCounterReturnsOnCall(0, processed)
			provider.NewCounterReturnsOnCall(1, failed)
			provider.NewHistogramReturns(duration)

			clock = fakeclock.NewFakeClock(time.Unix(1500000000, 0))
			p = processor.New(1, provider)
			p.Clock = clock
		})

		It("registers the processor metrics", func() {
			Expect(provider.NewCounterCallCount()).To(Equal(2))
			Expect(provider.NewCounterArgsForCall(0).Name).To(Equal("records_processed"))
			Expect(provider.NewCounterArgsForCall(1).Name).To(Equal("records_failed"))
			Expect(provider.NewHistogramArgsForCall(0).Name).To(Equal("record_duration"))
			Expect(provider.NewHistogramArgsForCall(0).LabelNames).To(Equal([]string{"operation"}))
		})

		It("records outcomes and durations per operation", func() {
			op := &processor.Operation{
				Name:  "tick",
				Arity: 1,
				Apply: func(v []*big.Int) ([]*big.Int, error) {
					clock.Increment(1500 * time.Millisecond)
					if v[0].Sign() == 0 {
						return nil, errors.New("zero")
					}
					return v, nil
				},
			}

			n, err := p.Run(context.Background(), op, strings.NewReader("1 2 3 0"), out)
			Expect(err).To(HaveOccurred())
			Expect(n).To(Equal(3))

			Expect(processed.AddCallCount()).To(Equal(3))
			Expect(processed.AddArgsForCall(0)).To(Equal(1.0))
			Expect(processed.WithArgsForCall(0)).To(Equal([]string{"operation", "tick"}))
			Expect(failed.AddCallCount()).To(Equal(1))
			Expect(failed.WithArgsForCall(0)).To(Equal([]string{"operation", "tick"}))

			Expect(duration.ObserveCallCount()).To(Equal(4))
			for i := 0; i < duration.ObserveCallCount(); i++ {
				Expect(duration.ObserveArgsForCall(i)).To(Equal(1.5))
			}
		})
	})
})
