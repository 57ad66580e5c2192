package dispatch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mailpilot/mailpilot-backend/internal/dispatch"
	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

func TestStatusCompletionTransition(t *testing.T) {
	status := dispatch.NewCampaignStatus()
	status.Begin(3)

	if !status.IsRunning() {
		t.Fatal("expected running after Begin")
	}

	if finished := status.Done(""); finished {
		t.Error("campaign should not be finished after 1 of 3")
	}
	if finished := status.Done("Failed to send to a@b.c: boom"); finished {
		t.Error("campaign should not be finished after 2 of 3")
	}
	if finished := status.Done(""); !finished {
		t.Error("third Done should complete the campaign")
	}

	snap := status.Snapshot()
	if snap.IsRunning || !snap.Completed {
		t.Errorf("expected completed state, got %+v", snap)
	}
	if snap.Remaining != 0 || snap.Total != 3 {
		t.Errorf("expected remaining=0 total=3, got %+v", snap)
	}
	if len(snap.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", snap.Errors)
	}
	if snap.Status != "completed" {
		t.Errorf("expected status completed, got %s", snap.Status)
	}
}

func TestStatusErrorWindowKeepsLastFive(t *testing.T) {
	status := dispatch.NewCampaignStatus()
	status.Begin(8)

	for i := 0; i < 8; i++ {
		status.Done(fmt.Sprintf("error %d", i))
	}

	snap := status.Snapshot()
	if len(snap.Errors) != 5 {
		t.Fatalf("expected 5 errors in view, got %d", len(snap.Errors))
	}
	// Insertion order, most recent last.
	for i, msg := range snap.Errors {
		want := fmt.Sprintf("error %d", i+3)
		if msg != want {
			t.Errorf("errors[%d] = %q, want %q", i, msg, want)
		}
	}
}

func TestStatusResetWhileRunning(t *testing.T) {
	status := dispatch.NewCampaignStatus()
	status.Begin(2)

	err := status.Reset()
	if !errors.Is(err, appErrors.ErrCampaignInProgress) {
		t.Fatalf("expected ErrCampaignInProgress, got %v", err)
	}

	snap := status.Snapshot()
	if !snap.IsRunning || snap.Total != 2 || snap.Remaining != 2 {
		t.Errorf("state changed by refused reset: %+v", snap)
	}
}

func TestStatusResetAfterCompletion(t *testing.T) {
	status := dispatch.NewCampaignStatus()
	status.Begin(1)
	status.Done("Failed to send to a@b.c: boom")

	if err := status.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	snap := status.Snapshot()
	if snap.IsRunning || snap.Completed || snap.Total != 0 || snap.Remaining != 0 || len(snap.Errors) != 0 {
		t.Errorf("expected zeroed state, got %+v", snap)
	}
}
