package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/swap/pkg/domain"
)

// Screen builds the markdown for the current terminal screen.
func Screen(snap domain.Snapshot) string {
	var b strings.Builder
	s := snap.Session

	fmt.Fprintf(&b, "# SWAP\n\n")
	fmt.Fprintf(&b, "Balance: **%s** (bonus %d)\n\n", FormatAmount(snap.Balance), snap.Wallet.Bonus)

	switch s.Step {
	case domain.StepAmountEntry:
		fmt.Fprintf(&b, "## Amount\n\n**%s**\n\n", FormatAmount(s.AmountValue()))
		b.WriteString("Type digits, `c` to clear, `ok` to confirm.\n")

	case domain.StepAwaitingScan:
		fmt.Fprintf(&b, "## Present card\n\nAmount: **%s**\n\n", FormatAmount(s.AmountValue()))
		fmt.Fprintf(&b, "Reader: `%s`\n\n", snap.Scan)
		switch snap.Scan {
		case domain.ScanScanning:
			b.WriteString("Waiting for a tap... `stop` to cancel, `tap [id]` to present a tag.\n")
		case domain.ScanUnsupported, domain.ScanError:
			b.WriteString("Reader unavailable. Use `sim` to simulate the tap.\n")
		default:
			b.WriteString("`scan` to start the reader, `sim` to simulate the tap.\n")
		}

	case domain.StepAwaitingPin:
		fmt.Fprintf(&b, "## Client confirmation\n\nAmount: **%s**\n\n", FormatAmount(s.AmountValue()))
		switch s.Prompt {
		case domain.PromptHidden:
			b.WriteString("Sending the request to the client phone...\n")
		case domain.PromptShown:
			if s.Payer != "" {
				fmt.Fprintf(&b, "Payer: %s\n\n", s.Payer)
			}
			fmt.Fprintf(&b, "PIN: `%s`\n\n", padPin(s.PinMasked()))
			b.WriteString("`pin <digits>` then `submit`.\n")
		case domain.PromptProcessing:
			b.WriteString("Verifying...\n")
		}

	case domain.StepSuccess:
		fmt.Fprintf(&b, "## Payment accepted\n\n**%s** collected.\n\n", FormatAmount(s.AmountValue()))
		b.WriteString("`reset` for a new collection.\n")

	case domain.StepFailure:
		b.WriteString("## Payment refused\n\n")
		if s.Reason != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Reason)
		}
		b.WriteString("`reset` to start over.\n")
	}
	return b.String()
}

// FormatAmount groups thousands with spaces (1 500).
func FormatAmount(v int64) string {
	digits := fmt.Sprintf("%d", v)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func padPin(masked string) string {
	if masked == "" {
		return "_"
	}
	return masked
}
