package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{
		"application_submitted", "under_review", "shortlisted",
		"interview_scheduled", "decisioning", "hired", "rejected", "waiting_list",
	} {
		parsed, ok := ParseStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, Status(s), parsed)
	}

	for _, s := range []string{"", "waiting", "approved", "HIRED", "in_review"} {
		_, ok := ParseStatus(s)
		assert.False(t, ok, s)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusHired.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusWaitingList.IsTerminal())
	assert.False(t, StatusApplicationSubmitted.IsTerminal())
	assert.False(t, StatusDecisioning.IsTerminal())
}

func TestProposeTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   Status
		requested Status
		wantValid bool
		wantNew   Status
	}{
		{"submitted to under_review", StatusApplicationSubmitted, StatusUnderReview, true, StatusUnderReview},
		{"under_review to shortlisted", StatusUnderReview, StatusShortlisted, true, StatusShortlisted},
		{"shortlisted to interview_scheduled", StatusShortlisted, StatusInterviewScheduled, true, StatusInterviewScheduled},
		{"interview_scheduled to decisioning", StatusInterviewScheduled, StatusDecisioning, true, StatusDecisioning},
		{"decisioning to hired", StatusDecisioning, StatusHired, true, StatusHired},

		{"skipping a step is invalid", StatusApplicationSubmitted, StatusShortlisted, false, StatusApplicationSubmitted},
		{"moving backwards is invalid", StatusDecisioning, StatusShortlisted, false, StatusDecisioning},
		{"hired before decisioning is invalid", StatusShortlisted, StatusHired, false, StatusShortlisted},

		{"rejected from submitted", StatusApplicationSubmitted, StatusRejected, true, StatusRejected},
		{"rejected from decisioning", StatusDecisioning, StatusRejected, true, StatusRejected},
		{"waiting_list from under_review", StatusUnderReview, StatusWaitingList, true, StatusWaitingList},
		{"waiting_list from decisioning", StatusDecisioning, StatusWaitingList, true, StatusWaitingList},

		{"hired from waiting_list", StatusWaitingList, StatusHired, true, StatusHired},
		{"rejected from waiting_list", StatusWaitingList, StatusRejected, true, StatusRejected},
		{"progression from waiting_list is invalid", StatusWaitingList, StatusDecisioning, false, StatusWaitingList},

		{"self transition is invalid", StatusUnderReview, StatusUnderReview, false, StatusUnderReview},
		{"waiting_list to waiting_list is invalid", StatusWaitingList, StatusWaitingList, false, StatusWaitingList},

		{"nothing leaves hired", StatusHired, StatusRejected, false, StatusHired},
		{"nothing leaves rejected", StatusRejected, StatusWaitingList, false, StatusRejected},
		{"rejected cannot become hired", StatusRejected, StatusHired, false, StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProposeTransition(tt.current, tt.requested)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantNew, got.NewStatus)
		})
	}
}

func TestCanonicalOf(t *testing.T) {
	assert.Equal(t, StatusUnderReview, CanonicalOf(LegacyWaiting))
	assert.Equal(t, StatusHired, CanonicalOf(LegacyApproved))
	assert.Equal(t, StatusRejected, CanonicalOf(LegacyRejected))
	assert.Equal(t, StatusUnderReview, CanonicalOf(LegacyStatus("pending")))
	assert.Equal(t, StatusUnderReview, CanonicalOf(LegacyStatus("")))
}

func TestLegacyOf(t *testing.T) {
	assert.Equal(t, LegacyApproved, LegacyOf(StatusHired))
	assert.Equal(t, LegacyRejected, LegacyOf(StatusRejected))
	assert.Equal(t, LegacyWaiting, LegacyOf(StatusUnderReview))
	assert.Equal(t, LegacyWaiting, LegacyOf(StatusWaitingList))
	assert.Equal(t, LegacyWaiting, LegacyOf(StatusInterviewScheduled))
}

func TestLegacyRoundTrip(t *testing.T) {
	// Mapping a legacy value to canonical and back is stable.
	for _, legacy := range []LegacyStatus{LegacyWaiting, LegacyApproved, LegacyRejected} {
		canonical := CanonicalOf(legacy)
		assert.Equal(t, canonical, CanonicalOf(LegacyOf(canonical)), legacy)
	}
}
