package domain

// SnapshotDiff represents the changes between two terminal snapshots.
// It is designed to be serialized to JSON for partial updates on a client,
// and lets hosts redraw only when something visible changed.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step    *Step        `json:"step,omitempty"`
	Amount  *string      `json:"amount,omitempty"`
	Pin     *string      `json:"pin,omitempty"` // Masked
	Prompt  *PromptPhase `json:"prompt,omitempty"`
	Scan    *ScanState   `json:"scan,omitempty"`
	Balance *int64       `json:"balance,omitempty"`
	Reason  *string      `json:"reason,omitempty"`

	// HistoryParams contains steps appended since the old snapshot.
	HistoryParams *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta represents changes to the step history.
type HistoryDelta struct {
	Appended []Step `json:"appended"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	ns := &newSnap.Session
	diff := &SnapshotDiff{SessionID: ns.ID}

	// A new session (reset) is reported in full.
	if oldSnap != nil && oldSnap.Session.ID != ns.ID {
		oldSnap = nil
	}

	if oldSnap == nil {
		diff.Step = &ns.Step
		diff.Amount = &ns.Amount
		masked := ns.PinMasked()
		diff.Pin = &masked
		if ns.Prompt != "" {
			diff.Prompt = &ns.Prompt
		}
		diff.Scan = &newSnap.Scan
		diff.Balance = &newSnap.Balance
		if ns.Reason != "" {
			diff.Reason = &ns.Reason
		}
		if len(ns.History) > 0 {
			diff.HistoryParams = &HistoryDelta{Appended: ns.History}
		}
		return diff
	}

	prev := &oldSnap.Session
	if prev.Step != ns.Step {
		diff.Step = &ns.Step
	}
	if prev.Amount != ns.Amount {
		diff.Amount = &ns.Amount
	}
	if prev.PinInput != ns.PinInput {
		masked := ns.PinMasked()
		diff.Pin = &masked
	}
	if prev.Prompt != ns.Prompt {
		diff.Prompt = &ns.Prompt
	}
	if oldSnap.Scan != newSnap.Scan {
		diff.Scan = &newSnap.Scan
	}
	if oldSnap.Balance != newSnap.Balance {
		diff.Balance = &newSnap.Balance
	}
	if prev.Reason != ns.Reason {
		diff.Reason = &ns.Reason
	}
	diff.HistoryParams = diffHistory(prev.History, ns.History)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// diffHistory assumes append-only history within a session.
func diffHistory(old, new []Step) *HistoryDelta {
	if len(new) > len(old) {
		return &HistoryDelta{Appended: new[len(old):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.Amount == nil &&
		d.Pin == nil &&
		d.Prompt == nil &&
		d.Scan == nil &&
		d.Balance == nil &&
		d.Reason == nil &&
		d.HistoryParams == nil
}
