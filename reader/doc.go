// Package reader drives a byte source through a line framer and delivers
// framed lines to a consumer over a bounded, ordered channel.
//
// A Loop owns one open device at a time and moves through the states
// Idle → Running → (Stopped | Failed). While Running it repeatedly performs
// bounded reads, feeds the bytes to the framer, and emits one Event per
// line in FIFO order. Read timeouts are the steady idle state, not errors.
// A disconnect triggers bounded reconnect attempts with exponential
// backoff; if they exhaust, the loop emits DeviceLostEvent, closes the
// event channel, and fails. Malformed or overlong lines are emitted as
// distinguishable events and never stop the stream.
//
// The event channel is bounded: a consumer that falls behind makes the
// loop block rather than drop or buffer lines without limit.
//
// Example usage:
//
//	loop := reader.New(reader.SerialDialer(serial.Config{
//	    Device:      "/dev/ttyUSB0",
//	    BaudRate:    115200,
//	    ReadTimeout: time.Second,
//	}))
//	if err := loop.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer loop.Stop()
//
//	for ev := range loop.Events() {
//	    switch ev := ev.(type) {
//	    case reader.LineEvent:
//	        fmt.Println(ev.Text)
//	    case reader.DeviceLostEvent:
//	        log.Println("device lost:", ev.Err)
//	    }
//	}
package reader
