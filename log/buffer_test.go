package log_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/voteguard/voteguard-node/log"
)

func TestBufferEviction(t *testing.T) {
	c := qt.New(t)

	log.Init(log.LogLevelDebug, "stderr", nil)
	buf := log.CaptureLogs(3)
	defer log.StopCapture()

	log.Info("one")
	log.Info("two")
	log.Info("three")
	log.Info("four")

	c.Assert(buf.Len(), qt.Equals, 3)

	entries := buf.Entries(0, "")
	c.Assert(entries, qt.HasLen, 3)
	// newest first, oldest ("one") evicted
	c.Assert(entries[0].Message, qt.Equals, "four")
	c.Assert(entries[1].Message, qt.Equals, "three")
	c.Assert(entries[2].Message, qt.Equals, "two")
}

func TestBufferLevelFilter(t *testing.T) {
	c := qt.New(t)

	log.Init(log.LogLevelDebug, "stderr", nil)
	buf := log.CaptureLogs(16)
	defer log.StopCapture()

	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	warns := buf.Entries(0, "warn")
	c.Assert(warns, qt.HasLen, 1)
	c.Assert(warns[0].Message, qt.Equals, "warn message")

	limited := buf.Entries(2, "")
	c.Assert(limited, qt.HasLen, 2)
	c.Assert(limited[0].Message, qt.Equals, "error message")
}
