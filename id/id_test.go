package id

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeVerbatim(t *testing.T) {
	for _, v := range []int64{0, 1, -1, math.MaxInt32, math.MinInt32} {
		got := DecodeVerbatim(EncodeVerbatim(v))
		assert.Equal(t, v, got)
	}
}

func TestEncodeDecodeFloat(t *testing.T) {
	for _, f := range []float32{0, 1.5, -2.25, 3.4028235e38} {
		got := DecodeFloat(EncodeFloat(f))
		assert.Equal(t, f, got)
	}
}

func TestFloatBitLayoutIsLowBits(t *testing.T) {
	// The float must live in the low 32 bits with nothing in the high
	// bits: the source engine's memcpy-into-Id layout.
	v := EncodeFloat(1.0)
	assert.Equal(t, uint64(0), uint64(v)>>32)
}

func TestStartsWith(t *testing.T) {
	assert.True(t, StartsWith(ValueFloatPrefix+"1.5x", ValueFloatPrefix))
	assert.False(t, StartsWith("1.5", ValueFloatPrefix))
}

func TestConvertIndexWordToFloatValue(t *testing.T) {
	f, err := ConvertIndexWordToFloatValue("3.5")
	assert.NoError(t, err)
	assert.Equal(t, float32(3.5), f)

	_, err = ConvertIndexWordToFloatValue("not-a-number")
	assert.Error(t, err)
}

func TestConvertIndexWordToValueLiteral(t *testing.T) {
	assert.Equal(t, "hello", ConvertIndexWordToValueLiteral(ValuePrefix+"hello"))
	assert.Equal(t, "hello", ConvertIndexWordToValueLiteral("hello"))
}

func TestResultTypeString(t *testing.T) {
	assert.Equal(t, "VERBATIM", Verbatim.String())
	assert.Equal(t, "KB", KB.String())
	assert.Equal(t, "UNKNOWN", ResultType(99).String())
}
