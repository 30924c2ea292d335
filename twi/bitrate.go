package twi

// prescalerTiers are the TWPS divisors in order of preference.
var prescalerTiers = [4]uint32{1, 4, 16, 64}

// BitRate computes the TWSR prescaler bits and the TWBR divisor that produce
// the requested SCL frequency from the CPU clock:
//
//	SCL = cpuHz / (16 + 2 * TWBR * 4^TWPS)
//
// The smallest prescaler tier that keeps TWBR within 8 bits is selected.
// Requests too slow for the largest tier saturate at TWPS=3, TWBR=255;
// requests too fast for the CPU clock yield TWBR=0.
func BitRate(cpuHz, speed uint32) (prescalerBits, twbr uint8) {
	if speed == 0 {
		return 3, 0xFF
	}

	var div uint32
	if q := cpuHz / speed; q > 16 {
		div = (q - 16) / 2
	}

	for bits, tier := range prescalerTiers {
		if div <= 0xFF*tier {
			return uint8(bits), uint8(div / tier)
		}
	}
	return 3, 0xFF
}

// SCLFrequency returns the bus frequency produced by a prescaler/divisor pair.
func SCLFrequency(cpuHz uint32, prescalerBits, twbr uint8) uint32 {
	tier := prescalerTiers[prescalerBits&0x03]
	return cpuHz / (16 + 2*uint32(twbr)*tier)
}
