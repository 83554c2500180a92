/*
Package runner drives a swap terminal from line-oriented input.

It is the bridge between the terminal (the state machine) and a human at a
console: each input line is a keypad or device command, and every visible
change of the terminal is rendered as a screen.

# Commands

	1500        type digits on the keypad
	c           clear the amount
	ok | val    confirm the amount
	scan        start the proximity reader
	stop        stop the reader
	tap [id]    present a tag to the simulated reader
	sim         simulate the tap without a reader
	pin 1234    type the client PIN
	submit      send the PIN for verification
	reset       abandon the session
	wait 2s     pause input while the screen keeps updating
	status      redraw the screen
	quit        leave

# Usage

	r := runner.NewRunner(
		runner.WithInput(os.Stdin),
		runner.WithTapper(reader),
		runner.WithSignals(runner.NewSignalManager()),
	)
	if err := r.Run(ctx, term); err != nil {
		log.Fatal(err)
	}
*/
package runner
