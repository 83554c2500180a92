/*
Package swap drives the "tap-to-pay" collection flow of a driver wallet terminal.

A Terminal owns exactly one Session and moves it through the collection steps:

	AmountEntry -> AwaitingScan -> AwaitingPin -> Success | Failure -> (Reset) -> AmountEntry

The driver keys an amount, the client taps a card or phone on the proximity
reader (or the driver simulates the tap), the client confirms with a PIN and the
transaction service accepts or rejects it. Hardware and backend are ports: the
package ships mock adapters for a self-contained demo.

# Usage

	package main

	import (
		"log"

		"github.com/aretw0/swap"
		"github.com/aretw0/swap/pkg/adapters/mock"
	)

	func main() {
		reader := mock.NewReader()
		term, err := swap.New(swap.WithReader(reader))
		if err != nil {
			log.Fatal(err)
		}
		defer term.Close()

		_ = term.TypeAmount("1500")
		_ = term.Confirm()      // AwaitingScan
		_ = term.StartScan()    // reader active
		reader.Tap("CLIENT_A")  // AwaitingPin, prompt pushed to the client

		<-term.Changes()
		log.Println(term.Snapshot().Session.Step)
	}

Timed work (the PIN push and the PIN verification) runs in the background and is
bound to the session: Reset and Close cancel it, and results that arrive for an
abandoned session are dropped.
*/
package swap
