package reader

import "time"

// Observer receives liveness and reconnect notifications from a Loop. It
// is purely informational and never consulted for control flow.
// Implementations should return quickly; they run on the loop goroutine.
//
// Example:
//
//	type logObserver struct{}
//
//	func (logObserver) ReadTimeout(n int)                          { ... }
//	func (logObserver) Reconnecting(attempt int, d time.Duration)  { ... }
//	func (logObserver) Reconnected(attempt int)                    { ... }
//
//	loop := reader.New(dial, reader.WithObserver(logObserver{}))
type Observer interface {
	// ReadTimeout is called after each read attempt that saw no data, with
	// the current consecutive-timeout count.
	ReadTimeout(consecutive int)

	// Reconnecting is called before each reconnect attempt with the delay
	// about to be waited.
	Reconnecting(attempt int, delay time.Duration)

	// Reconnected is called once a reconnect attempt succeeds.
	Reconnected(attempt int)
}
