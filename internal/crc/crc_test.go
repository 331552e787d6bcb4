package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCcittSingle(t *testing.T) {
	crc := CRC16(0)
	crc.Single(10)
	assert.EqualValues(t, 0xA14A, crc)
}

func TestComputeMatchesIncremental(t *testing.T) {
	buf := []byte{0x02, 0x45, 0x0E, 0xFA, 0xAA, 0x45, 0x01, 0x2B, 0x16, 0x68, 0xFF, 0xFF, 0x06}
	var c CRC16
	c.Block(buf)
	assert.EqualValues(t, Compute(buf), uint16(c))
}

func TestBitFlipDetected(t *testing.T) {
	buf := []byte{0x02, 0x45, 0x0E, 0xFA, 0xAA, 0x45, 0x01, 0x2B, 0x16, 0x68, 0xFF, 0xFF, 0x06}
	good := Compute(buf)
	for i := range buf {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), buf...)
			flipped[i] ^= 1 << bit
			assert.NotEqual(t, good, Compute(flipped), "byte %d bit %d", i, bit)
		}
	}
}
