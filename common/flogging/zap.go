/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger creates a zap logger around a new zap.Core. The core will use
// the provided encoder and sinks and a level enabler that is associated with
// the provided logger name. The logger that is returned will be named the same
// as the logger.
func NewZapLogger(core zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(
		core,
		append([]zap.Option{
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		}, options...)...,
	)
}

// NewModmulLogger creates a logger that delegates to the zap.SugaredLogger.
func NewModmulLogger(l *zap.Logger, options ...zap.Option) *ModmulLogger {
	return &ModmulLogger{
		s: l.WithOptions(append(options, zap.AddCallerSkip(1))...).Sugar(),
	}
}

// A ModmulLogger is an adapter around a zap.SugaredLogger.
//
// Methods without a formatting suffix (f or w) build the log entry message
// with fmt.Sprintln instead of fmt.Sprint so arguments are separated by
// spaces.
type ModmulLogger struct{ s *zap.SugaredLogger }

func (m *ModmulLogger) Debug(args ...interface{})                   { m.s.Debugf(formatArgs(args)) }
func (m *ModmulLogger) Debugf(template string, args ...interface{}) { m.s.Debugf(template, args...) }
func (m *ModmulLogger) Debugw(msg string, kvPairs ...interface{})   { m.s.Debugw(msg, kvPairs...) }
func (m *ModmulLogger) Error(args ...interface{})                   { m.s.Errorf(formatArgs(args)) }
func (m *ModmulLogger) Errorf(template string, args ...interface{}) { m.s.Errorf(template, args...) }
func (m *ModmulLogger) Errorw(msg string, kvPairs ...interface{})   { m.s.Errorw(msg, kvPairs...) }
func (m *ModmulLogger) Fatal(args ...interface{})                   { m.s.Fatalf(formatArgs(args)) }
func (m *ModmulLogger) Fatalf(template string, args ...interface{}) { m.s.Fatalf(template, args...) }
func (m *ModmulLogger) Fatalw(msg string, kvPairs ...interface{})   { m.s.Fatalw(msg, kvPairs...) }
func (m *ModmulLogger) Info(args ...interface{})                    { m.s.Infof(formatArgs(args)) }
func (m *ModmulLogger) Infof(template string, args ...interface{})  { m.s.Infof(template, args...) }
func (m *ModmulLogger) Infow(msg string, kvPairs ...interface{})    { m.s.Infow(msg, kvPairs...) }
func (m *ModmulLogger) Panic(args ...interface{})                   { m.s.Panicf(formatArgs(args)) }
func (m *ModmulLogger) Panicf(template string, args ...interface{}) { m.s.Panicf(template, args...) }
func (m *ModmulLogger) Warn(args ...interface{})                    { m.s.Warnf(formatArgs(args)) }
func (m *ModmulLogger) Warnf(template string, args ...interface{})  { m.s.Warnf(template, args...) }
func (m *ModmulLogger) Warnw(msg string, kvPairs ...interface{})    { m.s.Warnw(msg, kvPairs...) }

// Payloadf logs at PayloadLevel, below debug.
func (m *ModmulLogger) Payloadf(template string, args ...interface{}) {
	if ce := m.s.Desugar().Check(PayloadLevel, fmt.Sprintf(template, args...)); ce != nil {
		ce.Write()
	}
}

func (m *ModmulLogger) Named(name string) *ModmulLogger { return &ModmulLogger{s: m.s.Named(name)} }
func (m *ModmulLogger) Sync() error                     { return m.s.Sync() }
func (m *ModmulLogger) Zap() *zap.Logger                { return m.s.Desugar() }

func (m *ModmulLogger) IsEnabledFor(level zapcore.Level) bool {
	return m.s.Desugar().Core().Enabled(level)
}

func (m *ModmulLogger) With(args ...interface{}) *ModmulLogger {
	return &ModmulLogger{s: m.s.With(args...)}
}

func formatArgs(args []interface{}) string { return strings.TrimSuffix(fmt.Sprintln(args...), "\n") }
