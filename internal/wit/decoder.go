// Package wit decodes the binary stream of WitMotion serial IMU
// sensors and exposes sample sources over it.
package wit

import (
	"log"
	"math"
)

const packetSize = 11

// Packet framing and payload types. Every packet is 11 bytes: a 0x55
// header, a type byte, four little-endian int16 values and an additive
// checksum over the first ten bytes.
const (
	packetHeader byte = 0x55

	PacketTypeAcceleration byte = 0x51
	PacketTypeAngularRate  byte = 0x52
	PacketTypeAngle        byte = 0x53
)

// Full-scale ranges of the sensor outputs.
const (
	AccelerationRangeG  = 16.0
	AngularRateRangeDPS = 2000.0
	AngleRangeDeg       = 180.0
)

// Sample is one combined reading of the sensor. Acceleration is in g,
// angular rate in degrees per second, angles in degrees. The sensor
// interleaves packet types, so a Sample always carries the most recent
// value of each quantity.
type Sample struct {
	AccX float64 `json:"accX"`
	AccY float64 `json:"accY"`
	AccZ float64 `json:"accZ"`

	GyroX float64 `json:"gyroX"`
	GyroY float64 `json:"gyroY"`
	GyroZ float64 `json:"gyroZ"`

	AngleX float64 `json:"angleX"`
	AngleY float64 `json:"angleY"`
	AngleZ float64 `json:"angleZ"`
}

// Decoder reassembles packets from a raw byte stream. Bytes may arrive
// in arbitrary chunk sizes; the decoder resynchronizes on the 0x55
// header after noise and drops packets with a bad checksum.
type Decoder struct {
	buf    []byte
	sample Sample
}

// NewDecoder returns a Decoder with an empty reassembly buffer.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, packetSize)}
}

// Feed consumes a chunk of raw bytes and returns one Sample per
// completed acceleration packet. The acceleration packet closes out a
// sensor measurement cycle, so it is the natural emission point.
func (d *Decoder) Feed(chunk []byte) []Sample {
	var out []Sample
	for _, b := range chunk {
		if s, ok := d.processByte(b); ok {
			out = append(out, s)
		}
	}
	return out
}

func (d *Decoder) processByte(b byte) (Sample, bool) {
	d.buf = append(d.buf, b)

	// Resynchronize: the first byte must be the header and the second a
	// known packet type, otherwise shift by one and keep scanning.
	if d.buf[0] != packetHeader {
		d.buf = d.buf[1:]
		return Sample{}, false
	}
	if len(d.buf) > 1 && (d.buf[1] < 0x50 || d.buf[1] > 0x5A) {
		d.buf = d.buf[1:]
		return Sample{}, false
	}
	if len(d.buf) < packetSize {
		return Sample{}, false
	}

	pkt := d.buf
	d.buf = d.buf[:0]

	var sum byte
	for _, v := range pkt[:packetSize-1] {
		sum += v
	}
	if sum != pkt[packetSize-1] {
		log.Printf("wit: checksum mismatch: expected %#02x, got %#02x", sum, pkt[packetSize-1])
		return Sample{}, false
	}

	switch pkt[1] {
	case PacketTypeAcceleration:
		d.sample.AccX, d.sample.AccY, d.sample.AccZ = decodeAxes(pkt, AccelerationRangeG)
		return d.sample, true
	case PacketTypeAngularRate:
		d.sample.GyroX, d.sample.GyroY, d.sample.GyroZ = decodeAxes(pkt, AngularRateRangeDPS)
	case PacketTypeAngle:
		d.sample.AngleX, d.sample.AngleY, d.sample.AngleZ = decodeAxes(pkt, AngleRangeDeg)
	}
	return Sample{}, false
}

// decodeAxes extracts the three axis values from a packet payload. Each
// value is a little-endian int16 scaled to the quantity's full range,
// rounded to four decimals as the vendor tooling does.
func decodeAxes(pkt []byte, fullRange float64) (x, y, z float64) {
	at := func(i int) float64 {
		raw := int16(uint16(pkt[i+1])<<8 | uint16(pkt[i]))
		v := float64(raw) / 32768.0 * fullRange
		return math.Round(v*1e4) / 1e4
	}
	return at(2), at(4), at(6)
}
