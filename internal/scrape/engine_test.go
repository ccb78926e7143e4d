package scrape

import (
	"context"
	"testing"
	"time"
)

func TestWaitForAnyReportsDriverFailure(t *testing.T) {
	// A context chromedp cannot run against stands in for a crashed browser.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ready, err := waitForAny(ctx, []string{"div"}, time.Second)
	if err == nil {
		t.Fatal("waitForAny returned no error for an unusable browser context")
	}
	if ready {
		t.Error("waitForAny reported readiness despite the driver failure")
	}
}

func TestWaitForAnyTimeoutIsNotAnError(t *testing.T) {
	ready, err := waitForAny(context.Background(), []string{"div"}, 0)
	if err != nil {
		t.Fatalf("waitForAny returned %v for an elapsed deadline, want nil", err)
	}
	if ready {
		t.Error("waitForAny reported readiness after the deadline elapsed")
	}
}
