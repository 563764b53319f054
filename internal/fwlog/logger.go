// Copyright 2025 The flicker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fwlog is the structured logger used across flicker's core and
// adapters. It wraps zap behind a small interface so call sites never
// import zap directly.
package fwlog

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface every flicker package depends on.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	Fatalf(format string, v ...any)

	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Fatal(v ...any)

	SetLevel(Level)
	SetOutput(io.Writer)
}

// Level defines the priority of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (lv Level) toZapLevel() zapcore.Level {
	switch lv {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a case-insensitive level name from configuration.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level: %q", levelStr)
}

var defaultLogger Logger

func init() {
	defaultLogger = newZapLogger(LevelInfo, nil)
}

func newZapLogger(level Level, output io.Writer) *zapLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.toZapLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var core zapcore.Core
	if output != nil {
		encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
		core = zapcore.NewCore(encoder, zapcore.AddSync(output), level.toZapLevel())
	}

	var logger *zap.Logger
	if core != nil {
		logger = zap.New(core)
	} else {
		built, err := cfg.Build()
		if err != nil {
			panic(fmt.Sprintf("flicker: failed to build logger: %v", err))
		}
		logger = built
	}

	return &zapLogger{logger: logger.Sugar(), level: level, output: output}
}

type zapLogger struct {
	logger *zap.SugaredLogger
	level  Level
	output io.Writer
}

func (l *zapLogger) Debugf(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *zapLogger) Infof(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *zapLogger) Warnf(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *zapLogger) Errorf(format string, v ...any) { l.logger.Errorf(format, v...) }
func (l *zapLogger) Fatalf(format string, v ...any) { l.logger.Fatalf(format, v...) }

func (l *zapLogger) Debug(v ...any) { l.logger.Debug(v...) }
func (l *zapLogger) Info(v ...any)  { l.logger.Info(v...) }
func (l *zapLogger) Warn(v ...any)  { l.logger.Warn(v...) }
func (l *zapLogger) Error(v ...any) { l.logger.Error(v...) }
func (l *zapLogger) Fatal(v ...any) { l.logger.Fatal(v...) }

// SetLevel rebuilds the underlying zap logger at the new level, preserving
// whatever output was set via SetOutput. Not concurrency-safe; call during
// startup/config-reload only.
func (l *zapLogger) SetLevel(lv Level) {
	rebuilt := newZapLogger(lv, l.output)
	l.logger = rebuilt.logger
	l.level = lv
}

// SetOutput rebuilds the underlying zap logger writing JSON lines to w.
func (l *zapLogger) SetOutput(w io.Writer) {
	rebuilt := newZapLogger(l.level, w)
	l.logger = rebuilt.logger
	l.output = w
}

// DefaultLogger returns the process-wide default logger.
func DefaultLogger() Logger { return defaultLogger }

// SetLogger replaces the default logger. Not concurrency-safe; call before
// any other package reads DefaultLogger().
func SetLogger(v Logger) { defaultLogger = v }

func SetLevel(lv Level)  { defaultLogger.SetLevel(lv) }
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

func Debugf(format string, v ...any) { defaultLogger.Debugf(format, v...) }
func Infof(format string, v ...any)  { defaultLogger.Infof(format, v...) }
func Warnf(format string, v ...any)  { defaultLogger.Warnf(format, v...) }
func Errorf(format string, v ...any) { defaultLogger.Errorf(format, v...) }
func Fatalf(format string, v ...any) { defaultLogger.Fatalf(format, v...) }

func Debug(v ...any) { defaultLogger.Debug(v...) }
func Info(v ...any)  { defaultLogger.Info(v...) }
func Warn(v ...any)  { defaultLogger.Warn(v...) }
func Error(v ...any) { defaultLogger.Error(v...) }
func Fatal(v ...any) { defaultLogger.Fatal(v...) }
