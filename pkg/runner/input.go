package runner

import (
	"bufio"
	"io"
)

type inputResult struct {
	text string
	err  error
}

// pumpLines reads lines until EOF or done. The channel is closed on EOF.
// A blocked read on a console cannot be interrupted, so the goroutine may
// outlive the run until the next line arrives.
func pumpLines(r io.Reader, done <-chan struct{}) <-chan inputResult {
	ch := make(chan inputResult)
	go func() {
		defer close(ch)
		reader := bufio.NewReader(r)
		for {
			text, err := reader.ReadString('\n')
			if text != "" {
				select {
				case ch <- inputResult{text: text}:
				case <-done:
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					select {
					case ch <- inputResult{err: err}:
					case <-done:
					}
				}
				return
			}
		}
	}()
	return ch
}
