package logrus

import (
	"fmt"

	"github.com/go-logr/logr"
	log "github.com/sirupsen/logrus"
)

// nameField holds the logr name of the logger which emitted an entry.
const nameField = "logger"

// tracer is implemented by *log.Logger and *log.Entry but is not part of log.FieldLogger.
type tracer interface {
	Trace(args ...interface{})
}

// sink writes logr output to a logrus FieldLogger. logr info messages are chatty library
// output, so V(0) is logged at debug and anything more verbose at trace. Messages above
// maxLevel are dropped.
type sink struct {
	logger   log.FieldLogger
	name     string
	maxLevel int
}

// NewLogr returns a logr.Logger writing to logger. It is used to route controller-runtime and
// klog output through logrus.
func NewLogr(logger log.FieldLogger, maxLevel int) logr.Logger {
	return logr.New(sink{logger: logger, maxLevel: maxLevel})
}

// Init implements logr.LogSink
func (sink) Init(logr.RuntimeInfo) {}

// Info implements logr.LogSink
func (s sink) Info(level int, msg string, keyAndValues ...any) {
	entry := s.entry(keyAndValues)
	if level == 0 {
		entry.Debug(msg)
		return
	}
	if t, ok := entry.(tracer); ok {
		t.Trace(msg)
		return
	}
	entry.Debug(msg)
}

// Error implements logr.LogSink
func (s sink) Error(err error, msg string, keyAndValues ...any) {
	s.entry(keyAndValues).WithError(err).Error(msg)
}

// Enabled implements logr.LogSink
func (s sink) Enabled(level int) bool {
	return level <= s.maxLevel
}

// WithName implements logr.LogSink
func (s sink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "." + name
	}
	return sink{logger: s.logger, name: name, maxLevel: s.maxLevel}
}

// WithValues implements logr.LogSink
func (s sink) WithValues(keyAndValues ...any) logr.LogSink {
	return sink{logger: s.logger.WithFields(keyAndValuesToFields(keyAndValues...)), name: s.name, maxLevel: s.maxLevel}
}

func (s sink) entry(keyAndValues []any) log.FieldLogger {
	logger := s.logger
	if s.name != "" {
		logger = logger.WithField(nameField, s.name)
	}
	if len(keyAndValues) > 0 {
		logger = logger.WithFields(keyAndValuesToFields(keyAndValues...))
	}
	return logger
}

func keyAndValuesToFields(keyAndValues ...any) log.Fields {
	fields := log.Fields{}
	for idx := 0; idx < len(keyAndValues); idx += 2 {
		key, ok := keyAndValues[idx].(string)
		if !ok {
			key = fmt.Sprint(keyAndValues[idx])
		}
		fields[key] = ""
		if idx+1 < len(keyAndValues) {
			fields[key] = keyAndValues[idx+1]
		}
	}
	return fields
}
