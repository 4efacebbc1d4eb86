// Copyright 2025 Kadir Pekel
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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/logger"
)

const (
	// LogFileEnvVar is the environment variable name for log file path
	LogFileEnvVar = "LOG_FILE"
	// LogLevelEnvVar is the environment variable name for log level
	LogLevelEnvVar = "LOG_LEVEL"
	// LogFormatEnvVar is the environment variable name for log format
	LogFormatEnvVar = "LOG_FORMAT"

	DefaultLogLevel  = "info"
	DefaultLogFormat = logger.FormatSimple
)

// loggerSettings records which logger values came from flags or the
// environment, so the config file only fills the gaps.
type loggerSettings struct {
	level, file, format string
}

var cliLogger loggerSettings

// initLoggerFromCLI initializes the logger from CLI flags and environment variables.
// Priority: CLI flags > env vars > defaults
func initLoggerFromCLI(cliLogLevel, cliLogFile, cliLogFormat string) (func(), error) {
	cliLogger = loggerSettings{
		level:  firstNonEmpty(cliLogLevel, os.Getenv(LogLevelEnvVar)),
		file:   firstNonEmpty(cliLogFile, os.Getenv(LogFileEnvVar)),
		format: firstNonEmpty(cliLogFormat, os.Getenv(LogFormatEnvVar)),
	}
	return initLogger(
		firstNonEmpty(cliLogger.level, DefaultLogLevel),
		cliLogger.file,
		firstNonEmpty(cliLogger.format, DefaultLogFormat),
	)
}

// applyConfigLogger re-initializes the logger with the config file's
// logger section for every value the CLI and environment left unset.
func applyConfigLogger(cfg *config.LoggerConfig) (func(), error) {
	if cfg == nil {
		return nil, nil
	}
	if cliLogger.level != "" && cliLogger.file != "" && cliLogger.format != "" {
		return nil, nil
	}
	return initLogger(
		firstNonEmpty(cliLogger.level, cfg.Level, DefaultLogLevel),
		firstNonEmpty(cliLogger.file, cfg.File),
		firstNonEmpty(cliLogger.format, cfg.Format, DefaultLogFormat),
	)
}

func initLogger(levelStr, file, format string) (func(), error) {
	level := logger.ParseLevel(levelStr)

	var output io.Writer = os.Stderr
	var cleanup func()
	if file != "" {
		f, closeFn, err := logger.OpenLogFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
		cleanup = closeFn
	}

	logger.Init(level, output, format)
	return cleanup, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
