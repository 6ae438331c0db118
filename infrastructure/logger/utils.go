package logger

import (
	"fmt"
	"time"
)

// LogAndMeasureExecutionTime logs the start of functionName at debug level
// and returns a function that logs its end together with the elapsed time.
// Typical usage: defer logger.LogAndMeasureExecutionTime(log, "Confirm")()
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Debugf("%s start", functionName)
	return func() {
		log.Debugf("%s end. Took: %s", functionName, time.Since(start))
	}
}

// LogClosure is a closure that can be printed with %s to be used to
// generate expensive-to-create data for a detailed log level and avoid doing
// the work if the data isn't printed.
type LogClosure func() string

func (c LogClosure) String() string {
	return c()
}

// NewLogClosure casts a function to a LogClosure.
// See LogClosure for details.
func NewLogClosure(c func() string) LogClosure {
	return c
}

// LogMemoryStats logs the current heap usage of the process under the given title.
func LogMemoryStats(log *Logger, title string) {
	log.Debugf("%s: %s", title, NewLogClosure(func() string {
		stats := readMemStats()
		return fmt.Sprintf("HeapAlloc=%dMB HeapObjects=%d NumGC=%d",
			stats.HeapAlloc/1024/1024, stats.HeapObjects, stats.NumGC)
	}))
}
