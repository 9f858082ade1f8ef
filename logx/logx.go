/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package logx defines the logging interface every stage accepts.
package logx

import (
	"log"
	"os"
)

// Logger is the logging interface used throughout the engine.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// stdLogger adapts the standard library logger to Logger.
type stdLogger struct {
	l *log.Logger
}

// DefaultLogger returns a Logger that writes to stderr with a timestamp prefix.
func DefaultLogger() Logger {
	return &stdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...any) { s.l.Printf("DEBUG "+format, args...) }
func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...any)  { s.l.Printf("WARN "+format, args...) }
func (s *stdLogger) Errorf(format string, args ...any) { s.l.Printf("ERROR "+format, args...) }

// Nop is a Logger that discards everything; handy for tests.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}
