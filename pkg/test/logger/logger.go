package logger

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// NewLoggerWithHook creates a new logger with debug loglevel and attaches a hook to it.
func NewLoggerWithHook() (*logrus.Logger, *logrustest.Hook) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	hook := logrustest.NewLocal(logger)
	return logger, hook
}

// AssertHookContainsMessage fails unless an entry with exactly the given message was logged.
func AssertHookContainsMessage(t assert.TestingT, hook *logrustest.Hook, message string) bool {
	if message == "" {
		return true
	}
	if hook == nil {
		return assert.Fail(t, "expect message but hook is nil")
	}
	for _, entry := range hook.AllEntries() {
		if entry.Message == message {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("%s does not contain %q", messages(hook), message))
}

// AssertHookContainsField fails unless an entry with message was logged carrying field=value.
func AssertHookContainsField(t assert.TestingT, hook *logrustest.Hook, message, field string, value interface{}) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Message == message && entry.Data[field] == value {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("%s has no %q entry with %s=%v", messages(hook), message, field, value))
}

func messages(hook *logrustest.Hook) string {
	var msgs []string
	for _, entry := range hook.AllEntries() {
		msgs = append(msgs, entry.Message)
	}
	return "[" + strings.Join(msgs, ", ") + "]"
}
