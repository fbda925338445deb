package reader

import (
	"errors"

	"github.com/luhtfiimanal/go-serial-lines/framer"
)

// Event is one value delivered to the consumer, in the order produced.
// Concrete types: LineEvent, MalformedLineEvent, LineTooLongEvent,
// DeviceLostEvent.
type Event interface {
	event()
}

// LineEvent carries one complete, decoded line (delimiter excluded).
type LineEvent struct {
	Text string
}

// MalformedLineEvent carries the raw bytes of a line that was not valid
// UTF-8. The stream continues after it.
type MalformedLineEvent struct {
	Raw []byte
}

// LineTooLongEvent reports that buffered bytes hit the line limit without a
// delimiter and were discarded. The stream continues after resync.
type LineTooLongEvent struct {
	Limit   int
	Dropped int
}

// DeviceLostEvent is the final event before the channel closes when
// reconnect attempts were exhausted. Err holds the last reconnect failure.
type DeviceLostEvent struct {
	Err      error
	Attempts int
}

func (LineEvent) event()          {}
func (MalformedLineEvent) event() {}
func (LineTooLongEvent) event()   {}
func (DeviceLostEvent) event()    {}

func frameEvent(fr framer.Frame) Event {
	if fr.Err == nil {
		return LineEvent{Text: fr.Text}
	}
	var tooLong *framer.LineTooLongError
	if errors.As(fr.Err, &tooLong) {
		return LineTooLongEvent{Limit: tooLong.Limit, Dropped: tooLong.Dropped}
	}
	return MalformedLineEvent{Raw: fr.Raw}
}
