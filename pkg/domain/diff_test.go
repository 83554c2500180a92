package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(s Session, scan ScanState, balance int64) *Snapshot {
	return &Snapshot{Session: s, Scan: scan, Balance: balance}
}

func TestDiff(t *testing.T) {
	base := Session{
		ID:      "sess-1",
		Step:    StepAmountEntry,
		Amount:  "15",
		History: []Step{StepAmountEntry},
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		got := Diff(nil, snap(base, ScanReady, 52500))
		require.NotNil(t, got)
		assert.Equal(t, "sess-1", got.SessionID)
		require.NotNil(t, got.Step)
		assert.Equal(t, StepAmountEntry, *got.Step)
		require.NotNil(t, got.Amount)
		assert.Equal(t, "15", *got.Amount)
		require.NotNil(t, got.Scan)
		assert.Equal(t, ScanReady, *got.Scan)
		assert.Equal(t, []Step{StepAmountEntry}, got.HistoryParams.Appended)
	})

	t.Run("No Changes", func(t *testing.T) {
		assert.Nil(t, Diff(snap(base, ScanReady, 1), snap(base, ScanReady, 1)))
	})

	t.Run("Amount Typed", func(t *testing.T) {
		next := base
		next.Amount = "150"
		got := Diff(snap(base, ScanReady, 1), snap(next, ScanReady, 1))
		require.NotNil(t, got)
		assert.Equal(t, "150", *got.Amount)
		assert.Nil(t, got.Step)
		assert.Nil(t, got.HistoryParams)
	})

	t.Run("Step Change Appends History", func(t *testing.T) {
		next := base
		next.Step = StepAwaitingScan
		next.History = []Step{StepAmountEntry, StepAwaitingScan}
		got := Diff(snap(base, ScanReady, 1), snap(next, ScanScanning, 1))
		require.NotNil(t, got)
		assert.Equal(t, StepAwaitingScan, *got.Step)
		assert.Equal(t, ScanScanning, *got.Scan)
		assert.Equal(t, []Step{StepAwaitingScan}, got.HistoryParams.Appended)
	})

	t.Run("New Session Reported In Full", func(t *testing.T) {
		next := Session{ID: "sess-2", Step: StepAmountEntry, History: []Step{StepAmountEntry}}
		got := Diff(snap(base, ScanReady, 1), snap(next, ScanReady, 1))
		require.NotNil(t, got)
		assert.Equal(t, "sess-2", got.SessionID)
		require.NotNil(t, got.Amount)
		assert.Equal(t, "", *got.Amount)
	})

	t.Run("Pin Is Masked", func(t *testing.T) {
		old := base
		old.Step = StepAwaitingPin
		next := old
		next.PinInput = "12"
		got := Diff(snap(old, ScanReady, 1), snap(next, ScanReady, 1))
		require.NotNil(t, got)
		assert.Equal(t, "••", *got.Pin)
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		s1 := Session{ID: "a", Step: StepAmountEntry, Amount: "1"}
		s2 := s1
		s2.Amount = "12"
		diff := Diff(snap(s1, ScanReady, 0), snap(s2, ScanReady, 0))
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"amount":"12"`)
		assert.False(t, strings.Contains(string(bytes), `"step"`), "unchanged step should be omitted: %s", bytes)
	})

	t.Run("Pin Never Serialized In Clear", func(t *testing.T) {
		s := Session{ID: "a", Step: StepAwaitingPin, PinInput: "1234"}
		bytes, err := json.Marshal(Diff(nil, snap(s, ScanReady, 0)))
		require.NoError(t, err)
		assert.NotContains(t, string(bytes), "1234")
	})
}
