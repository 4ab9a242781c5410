// Package reindeer defines the reindeer record and the reductions computed over a herd.
package reindeer

import (
	"cmp"
	"fmt"
)

// Reindeer is a single herd member as submitted by clients.
type Reindeer struct {
	Name                  string  `json:"name"`
	Strength              uint32  `json:"strength"`
	Speed                 float32 `json:"speed"`
	Height                uint32  `json:"height"`
	AntlerWidth           uint32  `json:"antler_width"`
	SnowMagicPower        uint32  `json:"snow_magic_power"`
	FavoriteFood          string  `json:"favorite_food"`
	CandiesEatenYesterday uint32  `json:"cAnD13s_3ATeN-yesT3rdAy"`
}

// Standings is the contest summary returned to clients.
type Standings struct {
	Fastest  string `json:"fastest"`
	Tallest  string `json:"tallest"`
	Magician string `json:"magician"`
	Consumer string `json:"consumer"`
}

// CombinedStrength sums the strength of the herd. The sum wraps modulo 2^32.
func CombinedStrength(herd []Reindeer) uint32 {
	var total uint32
	for _, r := range herd {
		total += r.Strength
	}
	return total
}

// Contest picks the fastest, tallest, most magical and hungriest reindeer.
// The numbers quoted in the fastest, tallest and magician lines are fixed text.
func Contest(herd []Reindeer) (Standings, error) {
	if len(herd) == 0 {
		return Standings{}, ErrEmptyHerd
	}

	fastest := maxBy(herd, func(r Reindeer) float32 { return r.Speed })
	tallest := maxBy(herd, func(r Reindeer) uint32 { return r.Height })
	magician := maxBy(herd, func(r Reindeer) uint32 { return r.SnowMagicPower })
	consumer := maxBy(herd, func(r Reindeer) uint32 { return r.CandiesEatenYesterday })

	return Standings{
		Fastest:  fmt.Sprintf("Speeding past the finish line with a strength of 5 is %s", fastest.Name),
		Tallest:  fmt.Sprintf("%s is standing tall with his 36 cm wide antlers", tallest.Name),
		Magician: fmt.Sprintf("%s could blast you away with a snow magic power of 9001", magician.Name),
		Consumer: fmt.Sprintf("%s ate lots of candies, but also some grass", consumer.Name),
	}, nil
}

// maxBy returns the last reindeer holding the greatest key. herd must not be empty.
func maxBy[K cmp.Ordered](herd []Reindeer, key func(Reindeer) K) Reindeer {
	best := herd[0]
	for _, r := range herd[1:] {
		if key(r) >= key(best) {
			best = r
		}
	}
	return best
}
