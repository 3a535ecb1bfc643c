package netex

import (
	"strconv"
	"strings"
)

const asciiZero = '0'

// ParseMinutes decodes "HH:MM" or "HH:MM:SS" into minute-of-day, per spec
// §4.2's bit-exact codec: result = d0*600 + d1*60 + d3*10 + d4, seconds
// ignored. The corpus is trusted; malformed input is undefined behavior by
// design (spec §4.2 error policy), so this indexes bytes directly.
func ParseMinutes(value string) uint16 {
	b := []byte(value)
	var result uint16
	result += uint16(b[0]-asciiZero) * 600
	result += uint16(b[1]-asciiZero) * 60
	result += uint16(b[3]-asciiZero) * 10
	result += uint16(b[4] - asciiZero)
	return result
}

// ParseDate decodes "YYYY-MM-DDTHH:MM:SS" into YYMMDD as a packed decimal
// integer, reading bytes 2,3,5,6,8,9 per spec §4.2.
func ParseDate(value string) uint32 {
	b := []byte(value)
	var result uint32
	result += uint32(b[2]-asciiZero) * 100000
	result += uint32(b[3]-asciiZero) * 10000
	result += uint32(b[5]-asciiZero) * 1000
	result += uint32(b[6]-asciiZero) * 100
	result += uint32(b[8]-asciiZero) * 10
	result += uint32(b[9] - asciiZero)
	return result
}

// ParseDayBits decodes an ASCII '0'/'1' string into a bit-packed byte array:
// right-padded with '0' to a multiple of 8, each 8-char group packed
// least-significant-bit-first (spec §4.2).
func ParseDayBits(value string) []byte {
	if pad := len(value) % 8; pad != 0 {
		value += strings.Repeat("0", 8-pad)
	}
	result := make([]byte, 0, len(value)/8)
	for i := 0; i < len(value); i += 8 {
		result = append(result, parseDayBitGroup(value[i:i+8]))
	}
	return result
}

func parseDayBitGroup(group string) byte {
	var result byte
	for i := 0; i < 8; i++ {
		result |= (group[i] - asciiZero) << uint(i)
	}
	return result
}

// parseFloat32 parses a coordinate string, failing the document on
// malformed numeric input per spec §4.2.
func parseFloat32(value string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func parseBool(value string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(value))
}

func clamp32(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// stripQuotes removes double-quote characters from a stop short name,
// per spec §3's ScheduledStopPoint invariant.
func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
