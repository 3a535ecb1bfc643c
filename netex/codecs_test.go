package netex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMinutesBasic(t *testing.T) {
	assert.Equal(t, uint16(754), ParseMinutes("12:34"))
}

func TestParseMinutesIgnoresSeconds(t *testing.T) {
	a := ParseMinutes("08:05")
	b := ParseMinutes("08:05:30")
	assert.Equal(t, a, b)
}

func TestParseMinutesMidnightCrossing(t *testing.T) {
	assert.Equal(t, uint16(1435), ParseMinutes("23:55"))
	assert.Equal(t, uint16(10), ParseMinutes("00:10"))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, uint32(220613), ParseDate("2022-06-13T00:00:00"))
}

func TestParseDayBits(t *testing.T) {
	result := ParseDayBits("1111111011")
	assert.Equal(t, []byte{127, 3}, result)
}

func TestParseDayBitsExactMultipleOfEight(t *testing.T) {
	result := ParseDayBits("11110000")
	assert.Equal(t, []byte{0x0F}, result)
}

func TestClamp32(t *testing.T) {
	assert.Equal(t, float32(-180), clamp32(-200, -180, 180))
	assert.Equal(t, float32(180), clamp32(200, -180, 180))
	assert.Equal(t, float32(45), clamp32(45, -180, 180))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "Central Station", stripQuotes(`"Central Station"`))
}
