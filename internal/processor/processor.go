/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package processor runs an operation over a stream of records. Records are
// transformed in parallel and written in input order.
package processor

import (
	"context"
	"io"
	"math/big"
	"runtime"

	"code.cloudfoundry.org/clock"
	"github.com/hyperledger-labs/modmul/common/flogging"
	"github.com/hyperledger-labs/modmul/common/metrics"
	"github.com/hyperledger-labs/modmul/internal/record"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var logger = flogging.MustGetLogger("modmul.processor")

type Processor struct {
	// Workers is the number of records transformed concurrently.
	Workers int
	Metrics *Metrics
	Clock   clock.Clock
}

// New returns a Processor using workers goroutines, or one per CPU when
// workers is not positive.
func New(workers int, provider metrics.Provider) *Processor {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Processor{
		Workers: workers,
		Metrics: NewMetrics(provider),
		Clock:   clock.NewClock(),
	}
}

// slot carries one record from the reader, through a worker, to the writer.
// done is closed once out or err is set.
type slot struct {
	index int
	in    []*big.Int
	out   []*big.Int
	err   error
	done  chan struct{}
}

// Run transforms every record of in with op and writes the results to out in
// input order. It stops at the first record that cannot be read or
// transformed; all records before it are written and flushed, and the error
// is returned together with the number of records written.
func (p *Processor) Run(ctx context.Context, op *Operation, in io.Reader, out io.Writer) (int, error) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	inFlight := int64(2 * workers)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(inFlight)
	jobs := make(chan *slot, inFlight)
	pending := make(chan *slot, inFlight)

	g.Go(func() error {
		defer close(pending)
		defer close(jobs)

		reader := record.NewReader(in, op.Arity)
		for {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}

			s := &slot{index: reader.Index(), done: make(chan struct{})}
			values, err := reader.Next()
			if err == io.EOF {
				sem.Release(1)
				return nil
			}
			if err != nil {
				s.err = err
				close(s.done)
				select {
				case pending <- s:
				case <-gctx.Done():
				}
				return nil
			}

			s.in = values
			select {
			case pending <- s:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case jobs <- s:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case s, ok := <-jobs:
					if !ok {
						return nil
					}
					p.apply(op, s)
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	written := 0
	g.Go(func() error {
		w := record.NewWriter(out)
		for s := range pending {
			select {
			case <-s.done:
			case <-gctx.Done():
				if err := w.Flush(); err != nil {
					logger.Warnf("Could not flush %d records ahead of cancellation: %s", written, err)
				}
				return gctx.Err()
			}

			if s.err != nil {
				if err := w.Flush(); err != nil {
					logger.Warnf("Could not flush %d records ahead of failure: %s", written, err)
				}
				return errors.WithMessagef(s.err, "%s failed", op.Name)
			}
			if err := w.Write(s.out...); err != nil {
				return err
			}
			written++
			sem.Release(1)
		}
		return w.Flush()
	})

	err := g.Wait()
	if err != nil {
		logger.Debugf("Batch %s stopped after %d records: %s", op.Name, written, err)
		return written, err
	}
	logger.Debugf("Batch %s completed with %d records", op.Name, written)
	return written, nil
}

func (p *Processor) apply(op *Operation, s *slot) {
	defer close(s.done)

	start := p.Clock.Now()
	s.out, s.err = op.Apply(s.in)
	p.Metrics.RecordDuration.With("operation", op.Name).Observe(p.Clock.Since(start).Seconds())

	if s.err != nil {
		s.err = errors.WithMessagef(s.err, "record %d", s.index)
		p.Metrics.RecordsFailed.With("operation", op.Name).Add(1)
		return
	}
	p.Metrics.RecordsProcessed.With("operation", op.Name).Add(1)
	logger.Debugf("%s record %d done", op.Name, s.index)
}
