package wit

// Data-rate codes accepted by the sensor's configuration register.
var dataRateHz = map[byte]float64{
	0x00: 0.1,
	0x01: 1,
	0x02: 5,
	0x05: 10,
	0x0A: 20,
	0x14: 50,
	0x19: 100,
	0x0B: 200,
}

// DataRateCommand builds the configuration command that sets the
// sensor's output rate: FF AA 03 <code> <checksum>.
func DataRateCommand(code byte) []byte {
	cmd := []byte{0xFF, 0xAA, 0x03, code}
	var sum byte
	for _, b := range cmd {
		sum += b
	}
	return append(cmd, sum)
}

// DataRateHz returns the output rate in Hz for a data-rate code, and
// whether the code is known.
func DataRateHz(code byte) (float64, bool) {
	hz, ok := dataRateHz[code]
	return hz, ok
}

// DataRateCode returns the code for an output rate in Hz, and whether
// the sensor supports that rate.
func DataRateCode(hz float64) (byte, bool) {
	for code, rate := range dataRateHz {
		if rate == hz {
			return code, true
		}
	}
	return 0, false
}
