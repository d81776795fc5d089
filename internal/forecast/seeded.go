package forecast

import (
	"strconv"
	"time"
)

// Rand yields values in [0,1).
type Rand func() float64

// SeedString identifies a location and calendar day. Forecasts computed for
// the same string are identical.
func SeedString(lat, lng float64, now time.Time) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "-" +
		strconv.FormatFloat(lng, 'f', -1, 64) + "-" +
		now.Format("Mon Jan 02 2006")
}

// HashSeed folds s into a non-negative seed with the 31-multiplier rolling
// hash over 32-bit signed arithmetic.
func HashSeed(s string) int64 {
	var h int32
	for _, c := range s {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Random is a small linear congruential generator. It is not safe for
// concurrent use.
type Random struct {
	state int64
}

// NewRandom returns a generator starting from seed.
func NewRandom(seed int64) *Random {
	return &Random{state: seed}
}

// Float64 advances the generator and returns a value in [0,1).
func (r *Random) Float64() float64 {
	r.state = (r.state*9301 + 49297) % 233280
	return float64(r.state) / 233280
}

// SeededRand returns the generator for seed, ready to be drawn from.
func SeededRand(seed string) Rand {
	return NewRandom(HashSeed(seed)).Float64
}
