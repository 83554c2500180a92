/*
Package ports defines the driven ports (interfaces) of the swap terminal.

These interfaces decouple the collection state machine from hardware and
backends, so that the mock implementations shipped for the demo can be replaced
by real ones without touching the state machine.

# Key Interfaces

  - ProximityReader: the tap (NFC) capability, exposed as a cancellable stream of reads.
  - TransactionService: pushes the PIN request to the client and verifies the PIN.
  - Haptics: fire-and-forget vibration feedback.
  - DistributedLocker: guarantees a single active session per terminal across processes.
*/
package ports
