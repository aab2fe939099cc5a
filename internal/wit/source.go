package wit

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// SampleSource is anything that can deliver decoded sensor samples over
// time: the real serial device, a mock generator, maybe a replay source
// from a recording.
type SampleSource interface {
	Next() (Sample, error)
	Close() error
}

// SerialSource reads the sensor over a UART port and decodes its
// packet stream.
type SerialSource struct {
	port    io.ReadWriteCloser
	dec     *Decoder
	pending []Sample
	buf     []byte
}

// OpenSerial opens the sensor's serial port and configures its output
// rate to rateHz (which must be one of the rates the device supports).
func OpenSerial(portName string, baudRate uint, rateHz float64) (*SerialSource, error) {
	code, ok := DataRateCode(rateHz)
	if !ok {
		return nil, fmt.Errorf("wit: unsupported data rate %g Hz", rateHz)
	}

	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("wit: open %s: %w", portName, err)
	}
	log.Printf("wit: serial port opened on %s at %d baud", portName, baudRate)

	src := newSerialSource(port)
	if _, err := port.Write(DataRateCommand(code)); err != nil {
		port.Close()
		return nil, fmt.Errorf("wit: configure data rate: %w", err)
	}
	log.Printf("wit: data rate set to %g Hz", rateHz)
	// The sensor needs a moment before it honors the new rate.
	time.Sleep(100 * time.Millisecond)

	return src, nil
}

func newSerialSource(port io.ReadWriteCloser) *SerialSource {
	return &SerialSource{
		port: port,
		dec:  NewDecoder(),
		buf:  make([]byte, 256),
	}
}

// Next blocks until the next complete sample arrives on the port.
func (s *SerialSource) Next() (Sample, error) {
	for len(s.pending) == 0 {
		n, err := s.port.Read(s.buf)
		if err != nil {
			return Sample{}, fmt.Errorf("wit: serial read: %w", err)
		}
		s.pending = append(s.pending, s.dec.Feed(s.buf[:n])...)
	}
	smp := s.pending[0]
	s.pending = s.pending[1:]
	return smp, nil
}

// Close closes the underlying serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}

// MockSource generates smooth per-axis sine waves with a little uniform
// noise, paced at the configured sample interval. It stands in for the
// real sensor during development and testing.
type MockSource struct {
	interval time.Duration
	now      float64
	rng      *rand.Rand
}

// Per-axis frequencies (Hz) and amplitudes of the generated waves.
var (
	mockAccFreq   = [3]float64{2.0, 3.0, 5.0}
	mockAccAmp    = [3]float64{1.0, 0.8, 1.2}
	mockGyroFreq  = [3]float64{1.0, 1.5, 0.7}
	mockGyroAmp   = [3]float64{20.0, 15.0, 10.0}
	mockAngleFreq = [3]float64{0.5, 0.3, 0.2}
	mockAngleAmp  = [3]float64{5.0, 10.0, 15.0}
)

const mockNoiseLevel = 0.05

// NewMockSource returns a MockSource emitting one sample per interval.
func NewMockSource(interval time.Duration) *MockSource {
	return &MockSource{
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next sleeps one sample interval and returns a generated sample,
// emulating the cadence of the real device.
func (m *MockSource) Next() (Sample, error) {
	time.Sleep(m.interval)

	gen := func(freq, amp [3]float64) (x, y, z float64) {
		vals := [3]float64{}
		for i := 0; i < 3; i++ {
			v := amp[i] * math.Sin(2*math.Pi*freq[i]*m.now)
			v += mockNoiseLevel * amp[i] * (m.rng.Float64() - 0.5)
			vals[i] = v
		}
		return vals[0], vals[1], vals[2]
	}

	var s Sample
	s.AccX, s.AccY, s.AccZ = gen(mockAccFreq, mockAccAmp)
	s.GyroX, s.GyroY, s.GyroZ = gen(mockGyroFreq, mockGyroAmp)
	s.AngleX, s.AngleY, s.AngleZ = gen(mockAngleFreq, mockAngleAmp)

	m.now += m.interval.Seconds()
	return s, nil
}

// Close is a no-op for the mock.
func (m *MockSource) Close() error { return nil }
