// Copyright 2024 The accountcache Authors
// This file is part of the accountcache library.
//
// The accountcache library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The accountcache library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the accountcache library. If not, see <http://www.gnu.org/licenses/>.

package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/accountcache/accountcache/internal/flags"
	"github.com/accountcache/accountcache/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logVmoduleFlag = &cli.StringFlag{
		Name:     "log.vmodule",
		Usage:    "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. accountcache=5,lru=4)",
		Value:    "",
		Category: flags.LoggingCategory,
	}
	logFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &flags.PathFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Value:    false,
		Category: flags.LoggingCategory,
	}
	cpuprofileFlag = &flags.PathFlag{
		Name:     "pprof.cpuprofile",
		Usage:    "Write CPU profile to the given file",
		Category: flags.LoggingCategory,
	}
	traceFlag = &flags.PathFlag{
		Name:     "go-execution-trace",
		Usage:    "Write Go execution trace to the given file",
		Category: flags.LoggingCategory,
	}
)

// Flags holds all command-line flags required for debugging.
var Flags = []cli.Flag{
	verbosityFlag,
	logVmoduleFlag,
	logFormatFlag,
	logFileFlag,
	logRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
	logMaxAgeFlag,
	logCompressFlag,
	cpuprofileFlag,
	traceFlag,
}

var (
	glogger       *log.GlogHandler
	logOutputFile io.WriteCloser
)

func init() {
	glogger = log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, false))
}

// Setup installs the root logger and starts the requested profiles. It should
// run before anything else logs, typically from the app's Before hook.
func Setup(ctx *cli.Context) error {
	format := ctx.String(logFormatFlag.Name)
	if format == "" {
		format = "terminal"
	}
	output, location, err := openLogOutput(ctx)
	if err != nil {
		return err
	}
	handler, err := newLogHandler(format, output)
	if err != nil {
		return err
	}
	glogger = log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.String(logVmoduleFlag.Name)); err != nil {
		return fmt.Errorf("invalid --%s: %w", logVmoduleFlag.Name, err)
	}
	log.SetDefault(log.NewLogger(glogger))

	if file := ctx.String(traceFlag.Name); file != "" {
		if err := Handler.StartGoTrace(file); err != nil {
			return err
		}
	}
	if file := ctx.String(cpuprofileFlag.Name); file != "" {
		if err := Handler.StartCPUProfile(file); err != nil {
			return err
		}
	}
	if location != "" {
		log.Info("Logging configured", "format", format, "rotate", ctx.Bool(logRotateFlag.Name), "location", location)
	}
	return nil
}

// openLogOutput opens the log file, rotated through lumberjack if requested,
// and reports where it lives. Without a file the output is nil and records
// only go to the terminal.
func openLogOutput(ctx *cli.Context) (io.WriteCloser, string, error) {
	file := ctx.String(logFileFlag.Name)
	if file != "" {
		if err := validateLogLocation(filepath.Dir(file)); err != nil {
			return nil, "", fmt.Errorf("failed to initialize file logger: %v", err)
		}
	}
	switch {
	case ctx.Bool(logRotateFlag.Name):
		location := file
		if location == "" {
			// lumberjack falls back to <processname>-lumberjack.log in the temp dir.
			location = filepath.Join(os.TempDir(), filepath.Base(os.Args[0])+"-lumberjack.log")
		}
		logOutputFile = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    ctx.Int(logMaxSizeMBsFlag.Name),
			MaxBackups: ctx.Int(logMaxBackupsFlag.Name),
			MaxAge:     ctx.Int(logMaxAgeFlag.Name),
			Compress:   ctx.Bool(logCompressFlag.Name),
		}
		return logOutputFile, location, nil
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, "", err
		}
		logOutputFile = f
		return f, file, nil
	}
	return nil, "", nil
}

// newLogHandler builds the record handler for the given format, writing to
// stderr and, if set, the file output. Terminal output is coloured only when
// stderr is an interactive terminal.
func newLogHandler(format string, file io.Writer) (slog.Handler, error) {
	var (
		stderr   = io.Writer(os.Stderr)
		useColor bool
	)
	if format == "terminal" {
		fd := os.Stderr.Fd()
		useColor = (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		if useColor {
			stderr = colorable.NewColorableStderr()
		}
	}
	output := stderr
	if file != nil {
		output = io.MultiWriter(file, stderr)
	}
	switch format {
	case "json":
		return log.JSONHandler(output), nil
	case "logfmt":
		return log.LogfmtHandler(output), nil
	case "terminal":
		return log.NewTerminalHandler(output, useColor), nil
	}
	return nil, fmt.Errorf("unknown log format: %v", format)
}

// Exit stops the running profiles and closes the log file.
func Exit() {
	Handler.StopCPUProfile()
	Handler.StopGoTrace()
	if logOutputFile != nil {
		logOutputFile.Close()
		logOutputFile = nil
	}
}

// validateLogLocation makes sure the log directory exists and is writable.
func validateLogLocation(path string) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		return fmt.Errorf("error creating the directory: %w", err)
	}
	f, err := os.CreateTemp(path, "acache-log-check-*")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}
