// Package serial opens Linux serial devices for raw, low-latency,
// line-oriented communication.
//
// The port is configured via termios for raw mode (no echo, no canonical
// processing, 8 data bits by default) and held exclusively with TIOCEXCL,
// so a second open of the same device fails instead of interleaving reads.
//
// Read is a single bounded attempt: it blocks in poll(2) until data
// arrives, the configured timeout elapses, or the device hangs up. A
// self-pipe lets Close wake a blocked Read immediately, so shutdown never
// waits out the timeout.
//
// This package does **not** support Windows.
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{
//	    Device:      "/dev/ttyUSB0",
//	    BaudRate:    115200,
//	    ReadTimeout: time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	buf := make([]byte, 4096)
//	for {
//	    n, err := port.Read(buf)
//	    switch {
//	    case err == nil:
//	        process(buf[:n])
//	    case errors.Is(err, serial.ErrTimeout):
//	        continue // steady-state idle, not a fault
//	    default:
//	        log.Fatal(err)
//	    }
//	}
package serial
