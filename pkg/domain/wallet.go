package domain

// Wallet is the driver side of the terminal: a bonus counter credited on
// every successful collection.
type Wallet struct {
	Bonus int   `json:"bonus"`
	Rate  int64 `json:"rate"` // Balance units credited per bonus point
}

// Balance is the amount shown on the driver card.
func (w Wallet) Balance() int64 {
	return int64(w.Bonus) * w.Rate
}

// Snapshot is a read-only view of the terminal, used by hosts to render screens.
type Snapshot struct {
	Session Session   `json:"session"`
	Scan    ScanState `json:"scan"`
	Wallet  Wallet    `json:"wallet"`
	Balance int64     `json:"balance"`
}
