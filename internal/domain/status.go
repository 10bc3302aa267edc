package domain

// Status is the canonical application status.
type Status string

// Canonical statuses, in progression order.
const (
	StatusApplicationSubmitted Status = "application_submitted"
	StatusUnderReview          Status = "under_review"
	StatusShortlisted          Status = "shortlisted"
	StatusInterviewScheduled   Status = "interview_scheduled"
	StatusDecisioning          Status = "decisioning"
	StatusHired                Status = "hired"
	StatusRejected             Status = "rejected"
	StatusWaitingList          Status = "waiting_list"
)

// progression is the forward chain ending in hired. waiting_list and rejected
// sit outside the chain and are reachable by their own rules.
var progression = []Status{
	StatusApplicationSubmitted,
	StatusUnderReview,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusDecisioning,
	StatusHired,
}

// ParseStatus returns the canonical status for s, or false when s is not one
// of the eight canonical values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusApplicationSubmitted, StatusUnderReview, StatusShortlisted,
		StatusInterviewScheduled, StatusDecisioning, StatusHired,
		StatusRejected, StatusWaitingList:
		return Status(s), true
	}
	return "", false
}

// IsTerminal reports whether no valid transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusHired || s == StatusRejected
}

// TransitionDecision is the outcome of proposing a status change.
type TransitionDecision struct {
	NewStatus Status
	Valid     bool
}

// ProposeTransition decides whether requested is a valid next status for an
// application currently at current. When invalid, NewStatus is current
// unchanged; the attempt is still expected to be recorded by the caller.
//
// Valid moves:
//   - the immediate successor on the progression chain
//   - waiting_list or rejected from any non-terminal status
//   - hired from decisioning or from waiting_list
func ProposeTransition(current, requested Status) TransitionDecision {
	if current.IsTerminal() || requested == current {
		return TransitionDecision{NewStatus: current, Valid: false}
	}
	switch requested {
	case StatusWaitingList, StatusRejected:
		return TransitionDecision{NewStatus: requested, Valid: true}
	case StatusHired:
		if current == StatusDecisioning || current == StatusWaitingList {
			return TransitionDecision{NewStatus: requested, Valid: true}
		}
	}
	for i := 0; i < len(progression)-1; i++ {
		if progression[i] == current && progression[i+1] == requested {
			return TransitionDecision{NewStatus: requested, Valid: true}
		}
	}
	return TransitionDecision{NewStatus: current, Valid: false}
}

// LegacyStatus is the three-value status vocabulary used by older
// integrations.
type LegacyStatus string

// Legacy statuses.
const (
	LegacyWaiting  LegacyStatus = "waiting"
	LegacyApproved LegacyStatus = "approved"
	LegacyRejected LegacyStatus = "rejected"
)

// CanonicalOf maps a legacy status to its canonical equivalent. The mapping is
// total: unrecognized input maps to under_review, the same bucket as waiting.
func CanonicalOf(legacy LegacyStatus) Status {
	switch legacy {
	case LegacyApproved:
		return StatusHired
	case LegacyRejected:
		return StatusRejected
	case LegacyWaiting:
		return StatusUnderReview
	default:
		return StatusUnderReview
	}
}

// LegacyOf maps a canonical status to the legacy vocabulary. All in-flight
// statuses collapse to waiting.
func LegacyOf(canonical Status) LegacyStatus {
	switch canonical {
	case StatusHired:
		return LegacyApproved
	case StatusRejected:
		return LegacyRejected
	default:
		return LegacyWaiting
	}
}
