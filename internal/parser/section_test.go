package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshwaladvisory/Bank-Transaction-Posting-Tool-sub000/internal/model"
)

func pncMarkers() model.SectionMarkers {
	return model.SectionMarkers{
		DepositStart:    []string{"ach additions", "other additions", "deposits and other additions"},
		WithdrawalStart: []string{"ach deductions", "other deductions", "service charges and fees", "checks and other deductions"},
		CheckStart:      []string{"checks and substitute checks"},
		End:             []string{"daily balance", "balance summary", "detail of services used"},
	}
}

func TestSectionTracker_Transitions(t *testing.T) {
	tracker := NewSectionTracker(pncMarkers())
	assert.Equal(t, SectionNone, tracker.Current())

	assert.True(t, tracker.Observe("Deposits and Other Additions"))
	assert.Equal(t, SectionDeposits, tracker.Current())

	assert.False(t, tracker.Observe("07/25  2,301.24  DEPOSIT"))
	assert.Equal(t, SectionDeposits, tracker.Current())

	assert.True(t, tracker.Observe("ACH Deductions"))
	assert.Equal(t, SectionWithdrawals, tracker.Current())

	assert.True(t, tracker.Observe("Checks and Substitute Checks"))
	assert.Equal(t, SectionChecks, tracker.Current())

	assert.True(t, tracker.Observe("Daily Balance Detail"))
	assert.Equal(t, SectionNone, tracker.Current())
}

func TestSectionTracker_SummaryRowIsNotHeader(t *testing.T) {
	tracker := NewSectionTracker(pncMarkers())
	tracker.Observe("Deposits and Other Additions")

	// The statement summary repeats section wording with a count and a
	// total appended; that row must not flip the state.
	assert.False(t, tracker.Observe("Checks and other deductions  14  5,210.33"))
	assert.Equal(t, SectionDeposits, tracker.Current())

	assert.True(t, tracker.Observe("Checks and other deductions"))
	assert.Equal(t, SectionWithdrawals, tracker.Current())
}
