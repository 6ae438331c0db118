package logger

import (
	"strings"

	"github.com/pkg/errors"
)

// Level is the level at which a logger is configured. All messages sent
// to a level which is below the current level are filtered.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelsByName = map[string]Level{
	"trace":    LevelTrace,
	"trc":      LevelTrace,
	"debug":    LevelDebug,
	"dbg":      LevelDebug,
	"info":     LevelInfo,
	"inf":      LevelInfo,
	"warn":     LevelWarn,
	"wrn":      LevelWarn,
	"error":    LevelError,
	"err":      LevelError,
	"critical": LevelCritical,
	"crt":      LevelCritical,
	"off":      LevelOff,
}

// LevelFromString returns a level based on the input string s. If the input
// can't be interpreted as a valid log level, the info level and false is
// returned.
func LevelFromString(s string) (l Level, ok bool) {
	level, ok := levelsByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return LevelInfo, false
	}
	return level, true
}

// ParseLevel is like LevelFromString but reports unknown levels as an error.
func ParseLevel(s string) (Level, error) {
	level, ok := LevelFromString(s)
	if !ok {
		return LevelInfo, errors.Errorf("the specified debug level [%s] is invalid", s)
	}
	return level, nil
}

// String returns the tag of the logger used in log messages, or "OFF" if
// the level will not produce any log output.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelTags[l]
}
