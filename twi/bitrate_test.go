package twi

import "testing"

func TestBitRate(t *testing.T) {
	tests := []struct {
		name     string
		cpuHz    uint32
		speed    uint32
		wantBits uint8
		wantTWBR uint8
	}{
		{"100kHz at 16MHz", 16_000_000, 100_000, 0, 72},
		{"400kHz at 16MHz", 16_000_000, 400_000, 0, 12},
		{"10kHz at 16MHz", 16_000_000, 10_000, 1, 198},
		{"1kHz at 16MHz", 16_000_000, 1_000, 3, 124},
		{"1kHz at 8MHz", 8_000_000, 1_000, 2, 249},
		{"too slow saturates", 16_000_000, 1, 3, 255},
		{"too fast for cpu", 1_000_000, 400_000, 0, 0},
		{"zero speed saturates", 16_000_000, 0, 3, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, twbr := BitRate(tt.cpuHz, tt.speed)
			if bits != tt.wantBits || twbr != tt.wantTWBR {
				t.Errorf("BitRate(%d, %d) = (%d, %d), want (%d, %d)",
					tt.cpuHz, tt.speed, bits, twbr, tt.wantBits, tt.wantTWBR)
			}
		})
	}
}

// The selected prescaler tier is the smallest whose range holds the divisor.
func TestBitRateTierMinimal(t *testing.T) {
	for _, cpuHz := range []uint32{1_000_000, 8_000_000, 16_000_000, 20_000_000} {
		for speed := uint32(MinClockSpeed); speed <= MaxClockSpeed; speed += 997 {
			bits, twbr := BitRate(cpuHz, speed)

			var div uint32
			if q := cpuHz / speed; q > 16 {
				div = (q - 16) / 2
			}
			if div > 0xFF*prescalerTiers[3] {
				continue
			}

			tier := prescalerTiers[bits]
			if div > 0xFF*tier {
				t.Fatalf("BitRate(%d, %d): divisor %d exceeds tier %d", cpuHz, speed, div, tier)
			}
			if bits > 0 && div <= 0xFF*prescalerTiers[bits-1] {
				t.Fatalf("BitRate(%d, %d): tier %d not minimal for divisor %d", cpuHz, speed, tier, div)
			}
			if uint32(twbr) != div/tier {
				t.Fatalf("BitRate(%d, %d): TWBR = %d, want %d", cpuHz, speed, twbr, div/tier)
			}
		}
	}
}

func TestSCLFrequency(t *testing.T) {
	if got := SCLFrequency(16_000_000, 0, 72); got != 100_000 {
		t.Errorf("SCLFrequency(16MHz, 0, 72) = %d, want 100000", got)
	}
	if got := SCLFrequency(16_000_000, 0, 12); got != 400_000 {
		t.Errorf("SCLFrequency(16MHz, 0, 12) = %d, want 400000", got)
	}

	// Round trip stays within one divisor step of the request.
	bits, twbr := BitRate(16_000_000, 10_000)
	got := SCLFrequency(16_000_000, bits, twbr)
	if got < 9_900 || got > 10_100 {
		t.Errorf("SCLFrequency for 10kHz request = %d", got)
	}
}
