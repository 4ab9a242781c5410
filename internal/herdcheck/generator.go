package herdcheck

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/okian/sleigh/internal/domain/reindeer"
)

const (
	maxSledSegments = 8
	pcgStream       = 0x9e3779b97f4a7c15
)

var (
	reindeerNames = []string{"Dasher", "Dancer", "Prancer", "Vixen", "Comet", "Cupid", "Donner", "Blitzen", "Rudolph"}
	favoriteFoods = []string{"hay", "grass", "carrots", "lichen", "cookies", "pizza"}
	junkSegments  = []string{"abc", "sled", "0x1f", "1.5", "--3", "++4", "4294967296"}
)

// Generator produces reproducible herds and sled paths from a seed.
// It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	n   int
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^pcgStream))}
}

// Reindeer returns a single random herd member. Small value ranges make
// ties common so the last-wins rule gets exercised.
func (g *Generator) Reindeer() reindeer.Reindeer {
	g.n++
	strength := g.rng.Uint32N(100)
	if g.rng.IntN(8) == 0 {
		strength = g.rng.Uint32()
	}
	return reindeer.Reindeer{
		Name:                  reindeerNames[g.rng.IntN(len(reindeerNames))] + "-" + strconv.Itoa(g.n),
		Strength:              strength,
		Speed:                 float32(g.rng.IntN(10000)) / 100,
		Height:                50 + g.rng.Uint32N(20),
		AntlerWidth:           20 + g.rng.Uint32N(30),
		SnowMagicPower:        g.rng.Uint32N(10000),
		FavoriteFood:          favoriteFoods[g.rng.IntN(len(favoriteFoods))],
		CandiesEatenYesterday: g.rng.Uint32N(10),
	}
}

// Herd returns between 1 and maxSize reindeer.
func (g *Generator) Herd(maxSize int) []reindeer.Reindeer {
	herd := make([]reindeer.Reindeer, 1+g.rng.IntN(maxSize))
	for i := range herd {
		herd[i] = g.Reindeer()
	}
	return herd
}

// SledPath returns a slash separated path of packet ids, with the
// occasional signed or unparsable segment mixed in.
func (g *Generator) SledPath() string {
	segments := make([]string, 1+g.rng.IntN(maxSledSegments))
	for i := range segments {
		switch g.rng.IntN(10) {
		case 0:
			segments[i] = junkSegments[g.rng.IntN(len(junkSegments))]
		case 1:
			segments[i] = "+" + strconv.FormatUint(uint64(g.rng.Uint32N(5000)), 10)
		case 2:
			segments[i] = "-" + strconv.FormatUint(uint64(g.rng.Uint32N(5000)), 10)
		case 3:
			segments[i] = strconv.FormatUint(uint64(g.rng.Uint32()), 10)
		default:
			segments[i] = strconv.FormatUint(uint64(g.rng.Uint32N(5000)), 10)
		}
	}
	return strings.Join(segments, "/")
}

// Checks builds the full check list for cfg. The fixed route checks come
// first, then one sled check per sled and two herd checks per herd.
func (g *Generator) Checks(cfg *Config) []Check {
	checks := make([]Check, 0, 3+cfg.Sleds+2*cfg.Herds)
	checks = append(checks,
		Check{Kind: KindGreeting},
		Check{Kind: KindFailure},
		Check{Kind: KindEmptyContest},
	)
	for i := 0; i < cfg.Sleds; i++ {
		checks = append(checks, Check{Kind: KindSled, Path: g.SledPath()})
	}
	for i := 0; i < cfg.Herds; i++ {
		herd := g.Herd(cfg.HerdSize)
		checks = append(checks,
			Check{Kind: KindStrength, Herd: herd},
			Check{Kind: KindContest, Herd: herd},
		)
	}
	return checks
}
