/*
Copyright The ACA Rollout Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log contains the logging subsystem of aca-rollout
package log

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels, from the most severe to the most verbose
const (
	// ErrorLevel is the error level priority
	ErrorLevel = zapcore.ErrorLevel
	// WarningLevel is the warning level priority
	WarningLevel = zapcore.WarnLevel
	// InfoLevel is the info level priority
	InfoLevel = zapcore.InfoLevel
	// DebugLevel is the debug level priority
	DebugLevel = zapcore.DebugLevel
	// TraceLevel is the trace level priority
	TraceLevel = zapcore.Level(-2)

	// DefaultLevel is the level used when nothing is requested
	DefaultLevel = InfoLevel
)

// The string representation of every log level
const (
	ErrorLevelString   = "error"
	WarningLevelString = "warning"
	InfoLevelString    = "info"
	DebugLevelString   = "debug"
	TraceLevelString   = "trace"

	// DefaultLevelString is the string representation of the default level
	DefaultLevelString = InfoLevelString
)

// Logger is the leveled logger used across the codebase
type Logger interface {
	Enabled() bool
	Error(err error, msg string, keysAndValues ...interface{})
	Warning(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Trace(msg string, keysAndValues ...interface{})

	WithValues(keysAndValues ...interface{}) Logger
	WithName(name string) Logger

	// GetLogger returns a logr.Logger backed by the same sink, for
	// interoperating with libraries speaking logr
	GetLogger() logr.Logger
}

type logger struct {
	z *zap.SugaredLogger
}

type contextKey string

const loggerKey = contextKey("logger")

var defaultLogger Logger = logger{z: zap.NewNop().Sugar()}

// SetLogger replaces the logger used by the package-level functions
func SetLogger(l Logger) {
	defaultLogger = l
}

// GetLogger returns the logger currently backing the package-level functions
func GetLogger() Logger {
	return defaultLogger
}

// FromContext retrieves the logger stored inside a context, falling back
// to the package-level one
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return defaultLogger
}

// IntoContext returns a copy of ctx carrying the passed logger
func IntoContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func (l logger) Enabled() bool {
	return l.z.Desugar().Core().Enabled(InfoLevel)
}

func (l logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.z.Errorw(msg, append(keysAndValues, "error", err)...)
}

func (l logger) Warning(msg string, keysAndValues ...interface{}) {
	l.z.Warnw(msg, keysAndValues...)
}

func (l logger) Info(msg string, keysAndValues ...interface{}) {
	l.z.Infow(msg, keysAndValues...)
}

func (l logger) Debug(msg string, keysAndValues ...interface{}) {
	l.z.Debugw(msg, keysAndValues...)
}

func (l logger) Trace(msg string, keysAndValues ...interface{}) {
	l.z.Logw(TraceLevel, msg, keysAndValues...)
}

func (l logger) WithValues(keysAndValues ...interface{}) Logger {
	return logger{z: l.z.With(keysAndValues...)}
}

func (l logger) WithName(name string) Logger {
	return logger{z: l.z.Named(name)}
}

func (l logger) GetLogger() logr.Logger {
	return zapr.NewLogger(l.z.Desugar())
}

// NewLogger wraps a zap logger into our Logger interface
func NewLogger(z *zap.Logger) Logger {
	return logger{z: z.Sugar()}
}

// Shortcuts on the package-level logger

// Error logs an error through the package-level logger
func Error(err error, msg string, keysAndValues ...interface{}) {
	defaultLogger.Error(err, msg, keysAndValues...)
}

// Warning logs a warning through the package-level logger
func Warning(msg string, keysAndValues ...interface{}) {
	defaultLogger.Warning(msg, keysAndValues...)
}

// Info logs an informational message through the package-level logger
func Info(msg string, keysAndValues ...interface{}) {
	defaultLogger.Info(msg, keysAndValues...)
}

// Debug logs a debug message through the package-level logger
func Debug(msg string, keysAndValues ...interface{}) {
	defaultLogger.Debug(msg, keysAndValues...)
}

// Trace logs a trace message through the package-level logger
func Trace(msg string, keysAndValues ...interface{}) {
	defaultLogger.Trace(msg, keysAndValues...)
}
