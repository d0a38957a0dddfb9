package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatterMoney(t *testing.T) {
	f := NewFormatter("£")
	cases := []struct {
		in   float64
		want string
	}{
		{1150, "£1,150.00"},
		{-110, "-£110.00"},
		{0, "£0.00"},
		{0.005, "£0.01"},
		{1234567.891, "£1,234,567.89"},
		{math.NaN(), "£0.00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, f.Money(tc.in), "input %v", tc.in)
	}
}

func TestFormatterDate(t *testing.T) {
	f := NewFormatter("£")
	require.Equal(t, "03 Jan 2024", f.Date(time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)))
	require.Empty(t, f.Date(time.Time{}))
}
