package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{83.333, 83},
		{91.5, 92},
		{82.5, 83},
		{0.49, 0},
		{0, 0},
		{99.999, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfUp(tt.in), "RoundHalfUp(%v)", tt.in)
	}
}

func TestPctOf(t *testing.T) {
	assert.Equal(t, 20, PctOf(3, 15))
	assert.Equal(t, 40, PctOf(12, 30))
	assert.Equal(t, 0, PctOf(5, 0))
	assert.Equal(t, 100, PctOf(7, 5))
}

func TestClampPct(t *testing.T) {
	assert.Equal(t, 0, ClampPct(-4))
	assert.Equal(t, 100, ClampPct(140))
	assert.Equal(t, 55, ClampPct(55))
}
