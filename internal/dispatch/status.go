package dispatch

import (
	"sync"

	appErrors "github.com/mailpilot/mailpilot-backend/internal/errors"
)

// errorWindow is how many recent errors a status snapshot exposes. The full
// list stays in memory for the life of the run.
const errorWindow = 5

// CampaignStatus is the shared state every worker writes and the status
// endpoint polls. All mutation happens under one mutex, including the
// running→completed transition, so the finish check cannot race with
// decrements.
type CampaignStatus struct {
	mu        sync.Mutex
	running   bool
	completed bool
	total     int
	remaining int
	errors    []string
}

// Snapshot is the read-only view served to pollers. Errors holds the last
// five entries in insertion order.
type Snapshot struct {
	IsRunning bool     `json:"isRunning"`
	Remaining int      `json:"remaining"`
	Total     int      `json:"total"`
	Errors    []string `json:"errors"`
	Completed bool     `json:"completed"`
	Status    string   `json:"status"`
}

func NewCampaignStatus() *CampaignStatus {
	return &CampaignStatus{}
}

// Begin arms the status for a fresh run of total recipients.
func (s *CampaignStatus) Begin(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.completed = false
	s.total = total
	s.remaining = total
	s.errors = nil
}

// Done finalizes one recipient: remaining drops exactly once, a non-empty
// errMsg is appended, and the last finalization flips the run to completed.
// Returns true for the call that completed the campaign.
func (s *CampaignStatus) Done(errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errMsg != "" {
		s.errors = append(s.errors, errMsg)
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 && s.running {
		s.running = false
		s.completed = true
		return true
	}
	return false
}

// IsRunning reports whether a campaign is currently draining.
func (s *CampaignStatus) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot copies the current state for pollers.
func (s *CampaignStatus) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.errors) > errorWindow {
		start = len(s.errors) - errorWindow
	}
	errs := make([]string, len(s.errors)-start)
	copy(errs, s.errors[start:])

	state := "completed"
	if s.running {
		state = "running"
	}

	return Snapshot{
		IsRunning: s.running,
		Remaining: s.remaining,
		Total:     s.total,
		Errors:    errs,
		Completed: s.completed,
		Status:    state,
	}
}

// Reset clears the status between campaigns. Resetting a live run is
// refused instead of corrupting worker bookkeeping.
func (s *CampaignStatus) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return appErrors.ErrCampaignInProgress
	}
	s.completed = false
	s.total = 0
	s.remaining = 0
	s.errors = nil
	return nil
}
