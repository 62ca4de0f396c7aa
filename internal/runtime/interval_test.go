package runtime

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		min  *Bound
		max  *Bound
		fail bool
	}{
		{in: "[10ms; 20min)", min: &Bound{10 * time.Millisecond, true}, max: &Bound{20 * time.Minute, false}},
		{in: "(;5s]", max: &Bound{5 * time.Second, true}},
		{in: "[1h;]", min: &Bound{time.Hour, true}},
		{in: "5s", min: &Bound{5 * time.Second, true}, max: &Bound{5 * time.Second, true}},
		{in: "0ms", min: &Bound{0, true}, max: &Bound{0, true}},
		{in: "[1.5s; 2d]", min: &Bound{1500 * time.Millisecond, true}, max: &Bound{48 * time.Hour, true}},
		{in: " ( 1 MIN ; 2 min ) ", min: &Bound{time.Minute, false}, max: &Bound{2 * time.Minute, false}},
		{in: "", fail: true},
		{in: "[;]", fail: true},
		{in: "[10; 20ms]", fail: true},
		{in: "[10ms 20ms]", fail: true},
		{in: "[10ms; 20ms", fail: true},
		{in: "[20ms; 10ms]", fail: true},
		{in: "[10ms; 10ms)", fail: true},
		{in: "(10ms; 10ms]", fail: true},
		{in: "[5 weeks;]", fail: true},
		{in: "ms", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			iv, err := ParseInterval(tt.in)
			if tt.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.min, iv.Min)
			assert.Equal(t, tt.max, iv.Max)
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	iv, err := ParseInterval("[10ms; 20min)")
	require.NoError(t, err)

	assert.False(t, iv.Contains(9*time.Millisecond))
	assert.True(t, iv.Contains(10*time.Millisecond))
	assert.True(t, iv.Contains(20*time.Minute-time.Millisecond))
	assert.False(t, iv.Contains(20*time.Minute))

	open, err := ParseInterval("(;5s]")
	require.NoError(t, err)
	assert.True(t, open.Contains(-time.Hour))
	assert.True(t, open.Contains(5*time.Second))
	assert.False(t, open.Contains(5*time.Second+time.Millisecond))
}

func TestInterval_ContainsMillis(t *testing.T) {
	iv, err := ParseInterval("[10ms; 20min)")
	require.NoError(t, err)
	assert.True(t, iv.ContainsMillis(10))
	assert.False(t, iv.ContainsMillis(math.MaxInt64/2))
	assert.False(t, iv.ContainsMillis(math.MinInt64/2))

	upper, err := ParseInterval("[1h;]")
	require.NoError(t, err)
	assert.True(t, upper.ContainsMillis(math.MaxInt64/2))
	assert.False(t, upper.ContainsMillis(math.MinInt64/2))

	lower, err := ParseInterval("(;5s]")
	require.NoError(t, err)
	assert.True(t, lower.ContainsMillis(math.MinInt64/2))
	assert.False(t, lower.ContainsMillis(math.MaxInt64/2))
}

func TestInterval_BoundsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("inclusive bounds contain themselves, exclusive ones do not", prop.ForAll(
		func(lo, width int64, loIncl, hiIncl bool) bool {
			hi := lo + width + 1
			iv := &Interval{
				Min: &Bound{time.Duration(lo) * time.Millisecond, loIncl},
				Max: &Bound{time.Duration(hi) * time.Millisecond, hiIncl},
			}
			return iv.Contains(time.Duration(lo)*time.Millisecond) == loIncl &&
				iv.Contains(time.Duration(hi)*time.Millisecond) == hiIncl &&
				!iv.Contains(time.Duration(lo-1)*time.Millisecond) &&
				!iv.Contains(time.Duration(hi+1)*time.Millisecond)
		},
		gen.Int64Range(0, 1_000_000),
		gen.Int64Range(0, 1_000_000),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
