package reader

import (
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-serial-lines/serial"
)

func TestLoop_EndToEndOverPty(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	loop := New(SerialDialer(serial.Config{
		Device:      slave.Name(),
		BaudRate:    115200,
		ReadTimeout: 100 * time.Millisecond,
	}))
	require.NoError(t, loop.Start())
	t.Cleanup(func() { loop.Stop() })

	_, err = master.Write([]byte("hello\r\nworld\n"))
	require.NoError(t, err)

	require.Equal(t, LineEvent{Text: "hello"}, nextEvent(t, loop.Events()))
	require.Equal(t, LineEvent{Text: "world"}, nextEvent(t, loop.Events()))

	require.NoError(t, loop.Stop())
	require.Equal(t, StateStopped, loop.State())
	require.NoError(t, loop.Err())
}

func TestLoop_StopIsPromptDespiteLongReadTimeout(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	loop := New(SerialDialer(serial.Config{
		Device:      slave.Name(),
		BaudRate:    115200,
		ReadTimeout: 10 * time.Second,
	}))
	require.NoError(t, loop.Start())

	// Give the loop a chance to block in the read.
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, loop.Stop())
	require.Less(t, time.Since(start), time.Second,
		"Stop must wake the blocked read via the self-pipe, not wait out the timeout")
	requireClosed(t, loop.Events())
}
