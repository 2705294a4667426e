package logging_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pushtolive/ptl/internal/logging"
)

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC)
}

func TestLogger_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, logging.WithClock(fixedClock), logging.WithColor(false))
	logger.Info("Hello, 'octo' from 'acme'!", nil)
	logger.Warn("missing", map[string]interface{}{"b": 2, "a": "x"})
	logger.Criticalf("Failed to deploy!")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[09:07] INFO: Hello, 'octo' from 'acme'!",
		"[09:07] WARNING: missing a=x b=2",
		"[09:07] CRITICAL: Failed to deploy!",
	}, lines)
}

func TestLogger_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, logging.WithColor(false))
	logger.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	verbose := logging.New(&buf, logging.WithColor(false), logging.WithLevel(logging.LevelDebug))
	verbose.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "DEBUG: shown 2")
}

func TestLogger_Color(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, logging.WithColor(true))
	logger.Infof("colored")
	assert.Contains(t, buf.String(), "\x1b[")

	assert.False(t, logging.IsTerminal(&buf))
}

func TestLogger_FormattedLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, logging.WithClock(fixedClock), logging.WithColor(false), logging.WithLevel(logging.LevelDebug))
	logger.Debugf("Found config: %s", "/app/ptl.yml")
	logger.Infof("Hello, '%s' from '%s'!", "octo", "acme")
	logger.Warnf("%d missing", 3)
	logger.Criticalf("exit %d", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[09:07] DEBUG: Found config: /app/ptl.yml",
		"[09:07] INFO: Hello, 'octo' from 'acme'!",
		"[09:07] WARNING: 3 missing",
		"[09:07] CRITICAL: exit 1",
	}, lines)
}
