package serial

import "errors"

var (
	// ErrDeviceUnavailable is returned by Open when the device path does
	// not exist or the device is already held exclusively by another
	// process.
	ErrDeviceUnavailable = errors.New("serial: device unavailable")

	// ErrInvalidConfiguration is returned by Open when the Config names an
	// unsupported baud rate, data-bit count, or timeout.
	ErrInvalidConfiguration = errors.New("serial: invalid configuration")

	// ErrTimeout is returned by Read when no bytes arrived before the
	// configured read timeout. It is the expected steady state on an idle
	// link, not a fault.
	ErrTimeout = errors.New("serial: read timeout")

	// ErrDisconnected is returned by Read when the device reports a hangup
	// or removal. The port is unusable afterwards and must be reopened.
	ErrDisconnected = errors.New("serial: device disconnected")

	// ErrClosed is returned by Read after Close has been called.
	ErrClosed = errors.New("serial: port closed")
)
