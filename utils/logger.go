package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	infoLabel  = color.New(color.FgGreen).Sprint("INFO")
	warnLabel  = color.New(color.FgYellow).Sprint("WARN")
	errorLabel = color.New(color.FgRed).Sprint("ERROR")
	debugLabel = color.New(color.FgCyan).Sprint("DEBUG")
)

// Logger provides leveled logging throughout the application.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	err     *log.Logger
	debug   *log.Logger
	verbose bool
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, false)
}

// NewLoggerFromLevel builds a stdout/stderr logger; "debug" enables Debug output.
func NewLoggerFromLevel(level string) *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, strings.EqualFold(strings.TrimSpace(level), "debug"))
}

// NewLoggerTo creates a Logger on the given writers. Errors go to errOut.
func NewLoggerTo(out, errOut io.Writer, verbose bool) *Logger {
	flags := 0
	return &Logger{
		info:    log.New(out, "", flags),
		warn:    log.New(out, "", flags),
		err:     log.New(errOut, "", flags),
		debug:   log.New(out, "", flags),
		verbose: verbose,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Print(fmt.Sprintf("[%s] %-5s %s", l.timestamp(), infoLabel, fmt.Sprintf(format, args...)))
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Print(fmt.Sprintf("[%s] %-5s %s", l.timestamp(), warnLabel, fmt.Sprintf(format, args...)))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Print(fmt.Sprintf("[%s] %-5s %s", l.timestamp(), errorLabel, fmt.Sprintf(format, args...)))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.debug.Print(fmt.Sprintf("[%s] %-5s %s", l.timestamp(), debugLabel, fmt.Sprintf(format, args...)))
}
