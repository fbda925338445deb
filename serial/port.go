package serial

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultReadTimeout is used when Config.ReadTimeout is zero. It also
// bounds how long a Close can take to interrupt a blocked Read in the
// worst case.
const DefaultReadTimeout = time.Second

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int           // 5..8, default 8
	ReadTimeout time.Duration // bounds one Read attempt, default DefaultReadTimeout
}

// Port is an exclusively held, raw-mode serial device. It is owned by a
// single reader at a time; reopening the device requires the previous Port
// to be fully closed first.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// Open opens a serial port using the provided Config and returns a Port
// configured for raw, low-latency, non-buffered operation.
//
// Open fails with ErrDeviceUnavailable if the path does not exist or the
// device is already exclusively held, and with ErrInvalidConfiguration if
// the baud rate, data bits, or timeout are unsupported. No retry is
// attempted; open faults are surfaced immediately.
func Open(cfg Config) (*Port, error) {
	if cfg.DataBits == 0 {
		cfg.DataBits = 8
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	baud, err := baudToUnix(cfg.BaudRate)
	if err != nil {
		return nil, err
	}
	csize, err := dataBitsToUnix(cfg.DataBits)
	if err != nil {
		return nil, err
	}
	if cfg.ReadTimeout < 0 {
		return nil, fmt.Errorf("%w: negative read timeout %v", ErrInvalidConfiguration, cfg.ReadTimeout)
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDeviceUnavailable, cfg.Device, err)
	}

	// Exclusive hold: a concurrent Open of the same device fails with EBUSY.
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("%w: exclusive hold on %s: %v", ErrDeviceUnavailable, cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= csize

	// Baud rate
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// VMIN=1, VTIME=0: the kernel returns as soon as any byte is available;
	// bounded waiting is done in poll, not in the tty driver.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Turn back into blocking mode now that config is done
	syscall.SetNonblock(fd, false)

	// Create self-pipe so Close can wake a blocked Read
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	file := os.NewFile(uintptr(fd), cfg.Device)
	return &Port{
		fd:     fd,
		file:   file,
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string {
	return p.config.Device
}

// Read performs one bounded read attempt. It blocks until data arrives,
// the configured timeout elapses, or the device errors, then returns:
//
//   - n > 0 and nil error when bytes were read
//   - 0, ErrTimeout when the timeout elapsed (or a zero-byte read
//     occurred, which is treated identically since no line-relevant
//     progress was made)
//   - 0, ErrDisconnected when the device reports hangup or removal
//   - 0, ErrClosed after Close
//
// The port state is unchanged beyond the OS-level read cursor.
func (p *Port) Read(buf []byte) (int, error) {
	select {
	case <-p.done:
		return 0, ErrClosed
	default:
	}

	pfd := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.pipeR), Events: unix.POLLIN},
	}
	ms := int(p.config.ReadTimeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	ready, err := unix.Poll(pfd, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, ErrTimeout
		}
		return 0, fmt.Errorf("%w: poll: %v", ErrDisconnected, err)
	}
	if ready == 0 {
		return 0, ErrTimeout
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		// Drain pipe
		var b [1]byte
		unix.Read(p.pipeR, b[:])
		return 0, ErrClosed
	}
	if pfd[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		// A pty master closing or a USB adapter unplugging lands here.
		// Drain any bytes that arrived before the hangup first.
		if pfd[0].Revents&unix.POLLIN != 0 {
			if n, rerr := p.file.Read(buf); rerr == nil && n > 0 {
				return n, nil
			}
		}
		return 0, ErrDisconnected
	}
	if pfd[0].Revents&unix.POLLIN != 0 {
		n, err := p.file.Read(buf)
		if err != nil {
			return 0, fmt.Errorf("%w: read: %v", ErrDisconnected, err)
		}
		if n == 0 {
			return 0, ErrTimeout
		}
		return n, nil
	}
	return 0, ErrTimeout
}

// WriteLine writes a line (with specified newline) to the serial port.
func (p *Port) WriteLine(line string, newline string) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	_, err := p.file.WriteString(line + newline)
	return err
}

// Close closes the serial port and unblocks any in-flight Read.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		// Wake up poll using self-pipe
		if p.pipeW > 0 {
			unix.Write(p.pipeW, []byte{1})
		}
		if p.file != nil {
			err = p.file.Close()
		}
		if p.pipeR > 0 {
			unix.Close(p.pipeR)
		}
		if p.pipeW > 0 {
			unix.Close(p.pipeW)
		}
	})
	return err
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	default:
		return 0, fmt.Errorf("%w: unsupported baud rate %d", ErrInvalidConfiguration, baud)
	}
}

func dataBitsToUnix(bits int) (uint32, error) {
	switch bits {
	case 5:
		return unix.CS5, nil
	case 6:
		return unix.CS6, nil
	case 7:
		return unix.CS7, nil
	case 8:
		return unix.CS8, nil
	default:
		return 0, fmt.Errorf("%w: unsupported data bits %d", ErrInvalidConfiguration, bits)
	}
}
