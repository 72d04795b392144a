package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// quietStatus sends status output to a buffer for the test.
func quietStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = old })
	return &buf
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	buf := quietStatus(t)
	s := newSpinner("Drawing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote %q to a non-terminal", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	quietStatus(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Drawing...")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	quietStatus(t)
	s := newSpinner("Drawing...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	buf := quietStatus(t)

	s := newSpinner("Drawing...")
	s.Start()
	s.StopWithSuccess("Done")

	s = newSpinner("Drawing...")
	s.Start()
	s.StopWithError("Failed")

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("Done")) || !bytes.Contains([]byte(out), []byte("Failed")) {
		t.Errorf("status output = %q", out)
	}
}
