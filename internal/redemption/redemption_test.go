package redemption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventpass/internal/models"
)

const pin = "482913"

func newTicket(benefits ...string) *models.Ticket {
	return &models.Ticket{
		PinCode:          pin,
		SelectedBenefits: benefits,
		UsedBenefits:     []string{},
		IsActive:         true,
	}
}

func assertCounters(t *testing.T, tk *models.Ticket) {
	t.Helper()
	assert.Equal(t, len(tk.UsedBenefits), tk.TotalBenefitsUsed)
	for _, b := range tk.UsedBenefits {
		assert.Contains(t, []string(tk.SelectedBenefits), b)
	}
}

func TestLunchWiFiScenario(t *testing.T) {
	tk := newTicket("Lunch", "WiFi")

	require.NoError(t, Redeem(tk, "Lunch", pin))
	assert.Equal(t, []string{"Lunch"}, []string(tk.UsedBenefits))
	assert.False(t, tk.IsUsed)
	assertCounters(t, tk)

	require.NoError(t, Redeem(tk, "WiFi", pin))
	assert.Equal(t, []string{"Lunch", "WiFi"}, []string(tk.UsedBenefits))
	assert.True(t, tk.IsUsed)
	assertCounters(t, tk)

	before := tk.Clone()
	assert.ErrorIs(t, Redeem(tk, "Lunch", pin), ErrAlreadyRedeemed)
	assert.Equal(t, before, tk)
}

func TestRedeemTwiceIsNoOp(t *testing.T) {
	tk := newTicket("Lunch", "WiFi", "Dinner")
	require.NoError(t, Redeem(tk, "Dinner", pin))
	before := tk.Clone()

	assert.ErrorIs(t, Redeem(tk, "Dinner", pin), ErrAlreadyRedeemed)
	assert.Equal(t, before, tk)
	assertCounters(t, tk)
}

func TestWrongPinNeverMutates(t *testing.T) {
	tk := newTicket("Lunch")
	before := tk.Clone()

	for _, bad := range []string{"", "000000", "48291", "4829130", "482914"} {
		assert.ErrorIs(t, Redeem(tk, "Lunch", bad), ErrInvalidPin, bad)
	}
	assert.Equal(t, before, tk)

	// retrying with the right pin still works
	require.NoError(t, Redeem(tk, "Lunch", pin))
}

func TestClosedTicketRejectsNewBenefits(t *testing.T) {
	tk := newTicket("Lunch")
	require.NoError(t, Redeem(tk, "Lunch", pin))
	require.True(t, tk.IsUsed)
	assert.Equal(t, StateClosed, StateOf(tk))

	assert.ErrorIs(t, Redeem(tk, "Dinner", pin), ErrTicketClosed)
	assertCounters(t, tk)
}

func TestDeactivatedAlwaysClosed(t *testing.T) {
	tk := newTicket("Lunch", "WiFi")
	require.NoError(t, Redeem(tk, "Lunch", pin))
	Deactivate(tk)
	Deactivate(tk)

	assert.Equal(t, StateDeactivated, StateOf(tk))
	assert.Equal(t, []string{"Lunch"}, []string(tk.UsedBenefits))
	for _, p := range []string{pin, "000000", ""} {
		for _, b := range []string{"Lunch", "WiFi", "Spa"} {
			assert.ErrorIs(t, Redeem(tk, b, p), ErrTicketClosed)
		}
	}
	assertCounters(t, tk)
}

func TestBenefitNotSelected(t *testing.T) {
	tk := newTicket("Lunch")
	assert.ErrorIs(t, Redeem(tk, "Spa", pin), ErrBenefitNotSelected)
	assert.Empty(t, tk.UsedBenefits)
}

func TestEmptySelectionNeverCloses(t *testing.T) {
	tk := newTicket()
	Normalize(tk)
	assert.False(t, tk.IsUsed)
	assert.Equal(t, StateOpen, StateOf(tk))
}

func TestNormalizeIgnoresCallerCounters(t *testing.T) {
	tk := newTicket("Lunch", "WiFi")
	tk.UsedBenefits = []string{"WiFi", "Lunch"}
	tk.TotalBenefitsUsed = 7
	tk.IsUsed = false

	Normalize(tk)
	assert.Equal(t, 2, tk.TotalBenefitsUsed)
	assert.True(t, tk.IsUsed)
}

func TestVerifyPin(t *testing.T) {
	tk := newTicket()
	assert.True(t, VerifyPin(tk, pin))
	assert.False(t, VerifyPin(tk, "482910"))
	assert.False(t, VerifyPin(&models.Ticket{}, ""))
}

func TestSameSetAndDedupe(t *testing.T) {
	assert.True(t, SameSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, SameSet(nil, nil))
	assert.False(t, SameSet([]string{"a"}, []string{"a", "b"}))
	assert.False(t, SameSet([]string{"a", "c"}, []string{"a", "b"}))

	assert.Equal(t, []string{"Lunch", "WiFi"}, Dedupe([]string{"Lunch", "", "WiFi", "Lunch"}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "deactivated", StateDeactivated.String())
}
