package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRupees(t *testing.T) {
	assert.Equal(t, int64(108000), FromRupees(decimal.NewFromInt(1080)))
	assert.Equal(t, int64(9950), FromRupees(decimal.RequireFromString("99.50")))
	assert.Equal(t, int64(1), FromRupees(decimal.RequireFromString("0.005")))
}

func TestParseRupees(t *testing.T) {
	p, err := ParseRupees(" 1200.25 ")
	require.NoError(t, err)
	assert.Equal(t, int64(120025), p)

	_, err = ParseRupees("twelve")
	require.Error(t, err)
}

func TestFormatAndToRupees(t *testing.T) {
	assert.Equal(t, "1080.00", Format(108000))
	assert.True(t, ToRupees(9950).Equal(decimal.RequireFromString("99.5")))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, int64(12000), Percentage(120000, decimal.NewFromInt(10)))
	assert.Equal(t, int64(3), Percentage(33, decimal.NewFromInt(10)))
	assert.Equal(t, int64(0), Percentage(120000, decimal.Zero))
	assert.Equal(t, int64(0), Percentage(-5, decimal.NewFromInt(10)))
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(108000, 108100, 100))
	assert.True(t, WithinTolerance(108100, 108000, 100))
	assert.False(t, WithinTolerance(108000, 108101, 100))
}
