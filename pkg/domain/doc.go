/*
Package domain contains the core domain models of the swap collection terminal.

It defines the entities of the collection flow: the Session walked through by the
state machine, the proximity scan states, the verification outcomes and the
driver Wallet. This package is kept pure and free of external dependencies like
I/O, timers or hardware access, following Hexagonal Architecture principles.

# Key Entities

  - Session: the ephemeral record of one amount-collection attempt (Step, Amount, PIN input).
  - Step: the screen the driver is on (AmountEntry, AwaitingScan, AwaitingPin, Success, Failure).
  - ScanState: the lifecycle of the proximity reader (Unsupported, Ready, Scanning, Error).
  - ReadEvent: a single tag read reported by the proximity reader.
  - Verdict: the outcome of a PIN verification (Accepted or Rejected).
  - Snapshot: a read-only view of the terminal used by hosts to render screens.
*/
package domain
