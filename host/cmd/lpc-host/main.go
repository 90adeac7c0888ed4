package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/shlex"

	"lpcbsp/can"
	"lpcbsp/host/board"
	"lpcbsp/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate")
	mode    = flag.String("mode", "console", "console or loopback")
	count   = flag.Int("count", 1000, "Bytes to send in loopback mode")
	idle    = flag.Duration("idle", 2*time.Second, "Loopback gives up after this long without an echo")
	timeout = flag.Duration("timeout", time.Second, "Reply timeout in console mode")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	var err error
	switch *mode {
	case "loopback":
		err = runLoopback(cfg)
	case "console":
		err = runConsole(cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLoopback(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	fmt.Printf("Sending %d bytes to %s...\n", *count, cfg.Device)
	res, err := serial.Loopback(port, *count, *idle)
	if err != nil {
		return err
	}
	fmt.Printf("Echoed %d/%d bytes in %v", res.Received, res.Sent, res.Elapsed.Round(time.Millisecond))
	if res.Mismatch > 0 {
		fmt.Printf(", %d corrupted", res.Mismatch)
	}
	fmt.Println()
	if res.Received != res.Sent {
		return fmt.Errorf("loopback lost %d bytes", res.Sent-res.Received)
	}
	return nil
}

func runConsole(cfg *serial.Config) error {
	fmt.Printf("Connecting to board on %s...\n", cfg.Device)
	c, err := board.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()
	c.SetTimeout(*timeout)

	if v, err := c.Version(); err == nil {
		fmt.Printf("Connected: %s, %d commands\n", v, len(c.Dictionary().Entries()))
	}
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	return repl(c, os.Stdin, os.Stdout)
}

func repl(c *board.Client, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" || args[0] == "q" {
			return nil
		}
		if err := run(c, args, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func run(c *board.Client, args []string, out io.Writer) error {
	switch args[0] {
	case "help", "?":
		printHelp(out)
	case "dict":
		for _, e := range c.Dictionary().Entries() {
			fmt.Fprintf(out, "  [%d] %s\n", e.ID, e.Format())
		}
	case "uptime":
		t, err := c.Uptime()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "uptime: %d ticks\n", t)
	case "version":
		v, err := c.Version()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
	case "events":
		evs, err := c.Events()
		if err != nil {
			return err
		}
		for _, e := range evs {
			fmt.Fprintf(out, "  %10d kind=%d %#x %#x\n", e.Clock, e.Kind, e.Value1, e.Value2)
		}
	case "i2c":
		return runI2C(c, args[1:], out)
	case "can":
		return runCAN(c, args[1:], out)
	case "spi":
		w, err := parseBytes(args[1:])
		if err != nil {
			return err
		}
		r, err := c.SPITransfer(w)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "% x\n", r)
	case "uart":
		n, err := c.UARTDropped()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dropped: %d\n", n)
	default:
		return fmt.Errorf("unknown command %s (type 'help' for available commands)", args[0])
	}
	return nil
}

func runI2C(c *board.Client, args []string, out io.Writer) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: i2c get <addr> <reg> [count] | i2c set <addr> <reg> <val>")
	}
	v, err := parseBytes(args[1:])
	if err != nil {
		return err
	}
	switch args[0] {
	case "get":
		n := 1
		if len(v) > 2 {
			n = int(v[2])
		}
		data, err := c.I2CReadReg(v[0], v[1], n)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%#02x[%#02x]: % x\n", v[0], v[1], data)
	case "set":
		if len(v) != 3 {
			return fmt.Errorf("usage: i2c set <addr> <reg> <val>")
		}
		if err := c.I2CWriteReg(v[0], v[1], v[2]); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")
	default:
		return fmt.Errorf("unknown i2c command %s", args[0])
	}
	return nil
}

func runCAN(c *board.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: can send <id> [bytes...] | can recv | can stats")
	}
	switch args[0] {
	case "send":
		if len(args) < 2 {
			return fmt.Errorf("usage: can send <id> [bytes...]")
		}
		id, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return err
		}
		data, err := parseBytes(args[2:])
		if err != nil {
			return err
		}
		m := can.Message{ID: uint32(id), Extended: id > can.MaxStandardID, DLC: uint8(len(data))}
		if len(data) > len(m.Data) {
			return can.ErrInvalidDLC
		}
		copy(m.Data[:], data)
		return c.CANSend(m)
	case "recv":
		m, ok, err := c.CANRecv()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "(empty)")
			return nil
		}
		fmt.Fprintln(out, m)
	case "stats":
		st, err := c.CANStats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dropped=%d errors=%d last_error=%#x reinits=%d\n",
			st.Dropped, st.Errors, st.LastError, st.Reinits)
	default:
		return fmt.Errorf("unknown can command %s", args[0])
	}
	return nil
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(strings.TrimSpace(a), 0, 8)
		if err != nil {
			return nil, fmt.Errorf("bad byte %q: %w", a, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nAvailable commands:")
	fmt.Fprintln(out, "  help                        - Show this help message")
	fmt.Fprintln(out, "  dict                        - Print the board's command dictionary")
	fmt.Fprintln(out, "  uptime                      - Board tick count")
	fmt.Fprintln(out, "  version                     - Firmware version")
	fmt.Fprintln(out, "  events                      - Recent driver events")
	fmt.Fprintln(out, "  i2c get <addr> <reg> [n]    - Read n registers")
	fmt.Fprintln(out, "  i2c set <addr> <reg> <val>  - Write one register")
	fmt.Fprintln(out, "  can send <id> [bytes...]    - Queue a CAN frame")
	fmt.Fprintln(out, "  can recv | can stats        - Pop a received frame, show counters")
	fmt.Fprintln(out, "  spi <bytes...>              - Full-duplex SPI transfer")
	fmt.Fprintln(out, "  uart                        - UART drop counter")
	fmt.Fprintln(out, "  quit/exit/q                 - Exit the program")
	fmt.Fprintln(out)
}
