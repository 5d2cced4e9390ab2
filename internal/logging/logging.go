package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level represents severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

var current = int32(LevelInfo)

var base = log.New(os.Stderr, "", log.Ldate|log.Ltime)

// ParseLevel resolves a level name.
func ParseLevel(s string) (Level, error) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelInfo, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", s)
	}
	return l, nil
}

// SetLevel sets the global threshold.
func SetLevel(l Level) { atomic.StoreInt32(&current, int32(l)) }

// SetLogLevel parses s and sets the global threshold; unknown names are ignored.
func SetLogLevel(s string) {
	if l, err := ParseLevel(s); err == nil {
		SetLevel(l)
	}
}

// GetLevel returns the global threshold.
func GetLevel() Level { return Level(atomic.LoadInt32(&current)) }

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) { base.SetOutput(w) }

func logf(l Level, format string, args ...any) {
	if GetLevel() > l {
		return
	}
	// A message without args is printed as-is so a literal % survives.
	if len(args) == 0 {
		base.Printf("[%s] %s", l, format)
		return
	}
	base.Printf("[%s] %s", l, fmt.Sprintf(format, args...))
}

func Debugf(format string, a ...any) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...any)  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...any)  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...any) { logf(LevelError, format, a...) }

// TimeTrack logs the time since start at debug level.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
