//go:build linux
// +build linux

// Command serial-lines opens a serial device and prints each received line
// to stdout. Transport faults are logged to stderr; the process survives
// disconnects up to the reconnect limit and shuts down cleanly on SIGINT
// or SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luhtfiimanal/go-serial-lines/framer"
	"github.com/luhtfiimanal/go-serial-lines/reader"
	"github.com/luhtfiimanal/go-serial-lines/serial"
)

func main() {
	var (
		device        = flag.String("device", "/dev/ttyUSB0", "serial device path")
		baud          = flag.Int("baud", 115200, "baud rate")
		dataBits      = flag.Int("databits", 8, "data bits (5-8)")
		timeout       = flag.Duration("timeout", time.Second, "read timeout; also bounds shutdown latency")
		delimiter     = flag.String("delimiter", "\n", "line delimiter (single byte)")
		maxLine       = flag.Int("max-line", framer.DefaultMaxLineBytes, "maximum buffered bytes for an unterminated line")
		maxReconnects = flag.Int("max-reconnects", 5, "reconnect attempts after a disconnect before giving up")
		backoffBase   = flag.Duration("backoff-base", 250*time.Millisecond, "initial reconnect delay")
		backoffMax    = flag.Duration("backoff-max", 5*time.Second, "maximum reconnect delay")
		verbose       = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if len(*delimiter) != 1 {
		logger.Error("delimiter must be a single byte", "delimiter", *delimiter)
		os.Exit(2)
	}

	loop := reader.New(
		reader.SerialDialer(serial.Config{
			Device:      *device,
			BaudRate:    *baud,
			DataBits:    *dataBits,
			ReadTimeout: *timeout,
		}),
		reader.WithDelimiter((*delimiter)[0]),
		reader.WithMaxLineBytes(*maxLine),
		reader.WithMaxReconnectAttempts(*maxReconnects),
		reader.WithBackoff(*backoffBase, *backoffMax),
		reader.WithLogger(logger),
	)
	if err := loop.Start(); err != nil {
		logger.Error("failed to open serial device", "device", *device, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		loop.Stop()
	}()

	for ev := range loop.Events() {
		switch ev := ev.(type) {
		case reader.LineEvent:
			fmt.Println(ev.Text)
		case reader.MalformedLineEvent:
			logger.Warn("malformed line skipped", "raw", fmt.Sprintf("%q", ev.Raw))
		case reader.LineTooLongEvent:
			logger.Warn("overlong line dropped", "limit", ev.Limit, "dropped", ev.Dropped)
		case reader.DeviceLostEvent:
			logger.Error("device lost", "attempts", ev.Attempts, "error", ev.Err)
		}
	}

	loop.Stop()
	if loop.Err() != nil {
		os.Exit(1)
	}
}
