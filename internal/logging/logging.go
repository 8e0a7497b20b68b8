package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupConsole routes the global logger to stderr in console format.
func SetupConsole(debug bool) {
	install(stderrConsole(), debug)
}

// Setup is SetupConsole plus, with a logFile, JSON lines written to that
// file and rotated by size. On error the console logger is still installed.
func Setup(debug bool, logFile string) error {
	if logFile == "" {
		SetupConsole(debug)
		return nil
	}
	file, err := rotatingFile(logFile)
	if err != nil {
		SetupConsole(debug)
		return err
	}
	install(zerolog.MultiLevelWriter(stderrConsole(), file), debug)
	return nil
}

func install(w io.Writer, debug bool) {
	log.Logger = newLogger(w, debug)
	zerolog.SetGlobalLevel(level(debug))
}

func stderrConsole() zerolog.ConsoleWriter {
	noColor := !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
	return console(os.Stderr, noColor)
}

// rotatingFile opens logFile for appending, creating its directory.
func rotatingFile(logFile string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}, nil
}

func level(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func console(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.DateTime,
	}
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	return zerolog.New(w).Level(level(debug)).With().Timestamp().Logger()
}
