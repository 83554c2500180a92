/*
Package mock provides in-process stand-ins for the terminal hardware and backend.

  - Reader simulates a proximity reader: hosts and tests inject taps and read errors.
  - TransactionService simulates the authorization backend with fixed delays and a
    single accepted PIN.
  - Haptics records vibration requests.

They exist so the collection flow can be demonstrated and tested without devices
or network; real adapters implement the same ports.
*/
package mock
