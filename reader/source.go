package reader

import (
	"github.com/luhtfiimanal/go-serial-lines/serial"
)

// Source is one open byte transport. Read performs a single bounded
// attempt and reports timeouts and disconnects with the serial package's
// sentinel errors. A Loop owns its Source exclusively and closes it on
// every exit path.
type Source interface {
	Read(p []byte) (int, error)
	Close() error
}

// DialFunc opens a fresh Source. It is called once at Start and again for
// each reconnect attempt; the previous Source is always fully closed
// first.
type DialFunc func() (Source, error)

// SerialDialer returns a DialFunc opening a serial port with the given
// configuration.
func SerialDialer(cfg serial.Config) DialFunc {
	return func() (Source, error) {
		port, err := serial.Open(cfg)
		if err != nil {
			return nil, err
		}
		return port, nil
	}
}
