// internal/pipeline/session.go
package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"refi-pipeline/internal/connectors/policy"
	"refi-pipeline/internal/models"
)

// Session is one applicant's run of the pipeline. It is driven by a single
// logical thread of control; the mutex only serializes step submissions
// against late-arriving connector results (the stale-response guard).
type Session struct {
	mu sync.Mutex

	ID    string
	state Step

	// attempt counts submissions per step. A connector result is applied
	// only if the attempt it was started under is still current.
	attempt map[Step]uint64

	Profile    models.ApplicantProfile
	Vehicle    *models.VehicleRecord
	Candidates []models.DecodedAccountRecord
	Match      *models.FinancerMatch
	Chosen     *models.DecodedAccountRecord
	Eligible   *policy.Result

	ApplicationID string
	SummaryDoc    string
}

// NewSession starts a pipeline run at the mobile step.
func NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		ID:      id,
		state:   StepMobile,
		attempt: map[Step]uint64{},
		Profile: models.NewApplicantProfile(id),
	}
}

// State returns the current machine state.
func (s *Session) State() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// beginAttempt records a new submission of a step and returns its sequence
// number. A resubmission before a prior call resolved supersedes it.
func (s *Session) beginAttempt(step Step) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt[step]++
	return s.attempt[step]
}

// stillCurrent reports whether a connector result started under seq may be
// applied: the machine must still sit at the step and no newer attempt may
// have started.
func (s *Session) stillCurrent(step Step, seq uint64) bool {
	return s.state == step && s.attempt[step] == seq
}
