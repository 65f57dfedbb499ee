/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package processor

import "github.com/hyperledger-labs/modmul/common/metrics"

var (
	recordsProcessedOpts = metrics.CounterOpts{
		Namespace:  "modmul",
		Subsystem:  "processor",
		Name:       "records_processed",
		Help:       "The number of records transformed successfully.",
		LabelNames: []string{"operation"},
	}

	recordsFailedOpts = metrics.CounterOpts{
		Namespace:  "modmul",
		Subsystem:  "processor",
		Name:       "records_failed",
		Help:       "The number of records that could not be transformed.",
		LabelNames: []string{"operation"},
	}

	recordDurationOpts = metrics.HistogramOpts{
		Namespace:  "modmul",
		Subsystem:  "processor",
		Name:       "record_duration",
		Help:       "The time taken to transform a single record, in seconds.",
		Buckets:    []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		LabelNames: []string{"operation"},
	}
)

type Metrics struct {
	RecordsProcessed metrics.Counter
	RecordsFailed    metrics.Counter
	RecordDuration   metrics.Histogram
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		RecordsProcessed: p.NewCounter(recordsProcessedOpts),
		RecordsFailed:    p.NewCounter(recordsFailedOpts),
		RecordDuration:   p.NewHistogram(recordDurationOpts),
	}
}
