package capture

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Device command bytes.
const (
	cmdStart byte = 0x01
	cmdStop  byte = 0x00
)

// LineReader turns a stream of device lines into samples. Invalid lines
// are logged and skipped.
type LineReader struct {
	r   *bufio.Reader
	now func() time.Time

	invalid int
}

var _ imu.RawSource = (*LineReader)(nil)

// NewLineReader reads lines from r, stamping samples with the current time.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r), now: time.Now}
}

// NextRaw returns the next valid sample. At end of input it returns io.EOF.
func (l *LineReader) NextRaw() (imu.Raw, error) {
	for {
		line, err := l.r.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			raw, perr := ParseLine(line, l.now())
			if perr == nil {
				return raw, nil
			}
			l.invalid++
			log.Printf("capture: invalid data received: %q", line)
		}
		if err != nil {
			return imu.Raw{}, err
		}
	}
}

// Invalid counts skipped lines.
func (l *LineReader) Invalid() int {
	return l.invalid
}

// Device is an open serial connection to the sensor. Opening sends the
// start command and Close sends the stop command.
type Device struct {
	port io.ReadWriteCloser
	Name string
}

// SerialOptions mirror the port settings of the sensor firmware.
func SerialOptions(portName string, baud uint) serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
}

// OpenDevice opens the serial port and starts streaming.
func OpenDevice(portName string, baud uint) (*Device, error) {
	port, err := serial.Open(SerialOptions(portName, baud))
	if err != nil {
		return nil, err
	}
	return NewDevice(port, portName)
}

// NewDevice wraps an open port and sends the start command.
func NewDevice(port io.ReadWriteCloser, portName string) (*Device, error) {
	if _, err := port.Write([]byte{cmdStart}); err != nil {
		port.Close()
		return nil, err
	}
	name := portName[strings.LastIndex(portName, "/")+1:]
	return &Device{port: port, Name: name}, nil
}

func (d *Device) Read(p []byte) (int, error) {
	return d.port.Read(p)
}

// Close stops streaming and closes the port.
func (d *Device) Close() error {
	_, werr := d.port.Write([]byte{cmdStop})
	return errors.Join(werr, d.port.Close())
}
