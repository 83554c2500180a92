package runner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/swap/pkg/domain"
)

const helpText = `Commands: <digits> | c | ok | scan | stop | tap [id] | sim | pin <digits> | submit | reset | wait <duration> | status | help | quit`

// ErrUnknownCommand is returned for lines that are not commands.
var ErrUnknownCommand = errors.New("unknown command")

// dispatch applies one command line. It reports whether the run should end
// and how long input should pause.
func (r *Runner) dispatch(term Terminal, line string) (quit bool, wait time.Duration, err error) {
	if line == "" {
		return false, 0, nil
	}
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if isDigits(cmd) {
		return false, 0, term.TypeAmount(cmd)
	}

	switch cmd {
	case "c", "clear":
		err = term.Press(domain.KeyClear)
	case "ok", "val":
		err = term.Confirm()
	case "scan":
		err = term.StartScan()
		if errors.Is(err, domain.ErrCapabilityUnavailable) || errors.Is(err, domain.ErrScanFailed) {
			r.system(fmt.Sprintf("%v. Use 'sim' to simulate the tap.", err))
			err = nil
		}
	case "stop":
		term.StopScan()
	case "tap":
		err = r.tap(args)
	case "sim":
		err = term.SimulateTap()
	case "pin":
		if len(args) != 1 {
			return false, 0, errors.New("usage: pin <digits>")
		}
		err = term.EnterPin(args[0])
	case "submit":
		err = term.SubmitPin()
	case "reset":
		err = term.Reset()
	case "wait":
		if len(args) != 1 {
			return false, 0, errors.New("usage: wait <duration>")
		}
		d, perr := time.ParseDuration(args[0])
		if perr != nil {
			return false, 0, fmt.Errorf("invalid duration: %w", perr)
		}
		return false, d, nil
	case "status":
	case "help", "?":
		fmt.Fprintln(r.Output, helpText)
	case "quit", "exit", "q":
		return true, 0, nil
	default:
		err = fmt.Errorf("%w %q (type 'help')", ErrUnknownCommand, cmd)
	}
	return false, 0, err
}

func (r *Runner) tap(args []string) error {
	if r.Tapper == nil {
		return errors.New("no simulated reader attached; use 'sim'")
	}
	tag := ""
	var records []string
	if len(args) > 0 {
		tag, records = args[0], args[1:]
	}
	if !r.Tapper.Tap(tag, records...) {
		r.system("reader is not scanning; the tag went unnoticed")
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if !domain.Key(string(c)).IsDigit() {
			return false
		}
	}
	return s != ""
}
