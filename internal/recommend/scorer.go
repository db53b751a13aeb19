// Package recommend holds the learned (user, spot) preference scorer used by
// the recommendation engine. The model is matrix factorization over implicit
// feedback: a booking counts as weight 1.0, a booking the user later rated
// four stars or better counts as 1.5. Training happens out-of-band (at
// startup and on a cron schedule) and publishes a new immutable model via an
// atomic swap; readers never observe a half-updated model.
package recommend

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

// Interaction is one implicit feedback observation.
type Interaction struct {
	UserID int
	SpotID int
	Weight float64
}

// Config controls training.
type Config struct {
	Factors        int
	Iterations     int
	LearningRate   float64
	Regularization float64
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		Factors:        16,
		Iterations:     50,
		LearningRate:   0.05,
		Regularization: 0.02,
		Seed:           42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Factors <= 0 {
		c.Factors = d.Factors
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.Regularization <= 0 {
		c.Regularization = d.Regularization
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Model is an immutable trained factorization. Create via Train, read via
// Score; never mutated after Train returns.
type Model struct {
	userFactors map[int][]float64
	spotFactors map[int][]float64
	trainedAt   time.Time
}

// Score estimates the affinity between a user and a spot as the dot product
// of their latent factors. ok is false when either side was never seen in
// training, in which case callers should treat the learned term as absent.
func (m *Model) Score(userID, spotID int) (float64, bool) {
	uf, ok := m.userFactors[userID]
	if !ok {
		return 0, false
	}
	sf, ok := m.spotFactors[spotID]
	if !ok {
		return 0, false
	}
	var dot float64
	for i := range uf {
		dot += uf[i] * sf[i]
	}
	return dot, true
}

// TrainedAt reports when the model was fitted.
func (m *Model) TrainedAt() time.Time {
	return m.trainedAt
}

// Train fits latent factors to the observed interactions by SGD on squared
// error against the interaction weights. Returns nil when there is nothing
// to learn from, which callers must treat as "no model".
func Train(cfg Config, data []Interaction) *Model {
	if len(data) == 0 {
		return nil
	}
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	users := make(map[int][]float64)
	spots := make(map[int][]float64)
	initFactors := func(m map[int][]float64, id int) []float64 {
		f, ok := m[id]
		if !ok {
			f = make([]float64, cfg.Factors)
			for i := range f {
				f[i] = rng.NormFloat64() * 0.1
			}
			m[id] = f
		}
		return f
	}
	for _, in := range data {
		initFactors(users, in.UserID)
		initFactors(spots, in.SpotID)
	}

	order := rng.Perm(len(data))
	for iter := 0; iter < cfg.Iterations; iter++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, idx := range order {
			in := data[idx]
			uf := users[in.UserID]
			sf := spots[in.SpotID]
			var pred float64
			for i := range uf {
				pred += uf[i] * sf[i]
			}
			errTerm := in.Weight - pred
			if math.IsNaN(errTerm) || math.IsInf(errTerm, 0) {
				continue
			}
			for i := range uf {
				u, s := uf[i], sf[i]
				uf[i] = u + cfg.LearningRate*(errTerm*s-cfg.Regularization*u)
				sf[i] = s + cfg.LearningRate*(errTerm*u-cfg.Regularization*s)
			}
		}
	}

	return &Model{userFactors: users, spotFactors: spots, trainedAt: time.Now().UTC()}
}

// Scorer is the shared, read-mostly model handle. Swap publishes a freshly
// trained model; concurrent readers keep using whichever model they loaded.
type Scorer struct {
	model atomic.Pointer[Model]
}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Swap replaces the live model. A nil model means "not trained", which
// switches the recommendation engine to its heuristic path.
func (s *Scorer) Swap(m *Model) {
	s.model.Store(m)
}

// Ready reports whether a trained model is live.
func (s *Scorer) Ready() bool {
	return s.model.Load() != nil
}

// Score proxies to the live model. ok is false when no model is loaded or
// the pair was unseen during training.
func (s *Scorer) Score(userID, spotID int) (float64, bool) {
	m := s.model.Load()
	if m == nil {
		return 0, false
	}
	return m.Score(userID, spotID)
}
