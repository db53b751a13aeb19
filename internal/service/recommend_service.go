package service

import (
	"math/rand"
	"sync"
	"time"

	"smartpark/internal/db"
	"smartpark/internal/entities"
	"smartpark/internal/logger"
)

const (
	// A review at or above this rating counts as a positive signal.
	positiveRatingThreshold = 4

	// Fixed bonuses applied on top of the learned score.
	preferredTypeBoost = 0.5
	positiveRateBoost  = 0.3
)

// RecommendStore provides the usage, rating and candidate signals the
// recommendation engine reads. All methods are read-only.
type RecommendStore interface {
	ActiveSpotsInZone(zoneID int) ([]db.ParkingSpot, error)
	UsedSpotIDs(userID, zoneID int) ([]int, error)
	PositivelyRatedSpotIDs(userID, zoneID, minRating int) ([]int, error)
	PreferredSpotTypeIDs(userID, zoneID, minRating int) ([]int, error)
}

// ConflictFilter is the batch availability probe shared with the allocation
// path.
type ConflictFilter interface {
	FilterConflicting(spotIDs []int, start, end time.Time) (map[int]bool, error)
}

// LearnedScorer is the opaque trained (user, spot) preference model. Ready
// reports whether a model is live at all; Score's second result is false for
// pairs the model never saw.
type LearnedScorer interface {
	Ready() bool
	Score(userID, spotID int) (float64, bool)
}

// RecommendService picks the best available spot for a user in a zone by
// blending usage novelty, rating signals and the learned preference score,
// falling back to a pure heuristic when no model has been trained.
//
// Recommendation is advisory, not reservation-holding: a returned spot can
// still be raced away, in which case the subsequent allocation fails with a
// slot conflict and the caller retries against a fresh recommendation.
type RecommendService struct {
	store    RecommendStore
	conflict ConflictFilter
	scorer   LearnedScorer
	log      *logger.Entry

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewRecommendService(store RecommendStore, conflict ConflictFilter, scorer LearnedScorer) *RecommendService {
	return &RecommendService{
		store:    store,
		conflict: conflict,
		scorer:   scorer,
		log:      logger.GetLogger().WithComponent("recommend_service"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// signals is everything gathered about the user's history in the zone.
type signals struct {
	used            map[int]bool
	positivelyRated map[int]bool
	preferredTypes  map[int]bool
}

// Recommend returns the top spot for the query, or nil when no candidate
// qualifies after all filtering.
//
// Ties in the scored path are broken deterministically: candidates are
// enumerated in ascending spot id and only a strictly greater score
// displaces the current best, so equal scores resolve to the lowest id.
func (s *RecommendService) Recommend(q entities.RecommendationQuery) (*entities.RecommendationResponse, error) {
	sig, err := s.gatherSignals(q.UserID, q.ParkingZoneID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.ActiveSpotsInZone(q.ParkingZoneID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, nil
	}

	if !s.scorer.Ready() {
		return s.heuristic(q, sig, active)
	}

	// Prefer spots the user has never used; if they have used every spot in
	// the zone, recommend among all of them rather than returning nothing.
	candidates := unusedFirst(active, sig.used)

	candidates, err = s.dropConflicting(candidates, q.StartTime, q.EndTime)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return s.heuristic(q, sig, active)
	}

	best := candidates[0]
	bestScore := s.compositeScore(q.UserID, &best, sig)
	for i := 1; i < len(candidates); i++ {
		score := s.compositeScore(q.UserID, &candidates[i], sig)
		if score > bestScore {
			best = candidates[i]
			bestScore = score
		}
	}

	return spotToRecommendation(&best, bestScore), nil
}

func (s *RecommendService) gatherSignals(userID, zoneID int) (*signals, error) {
	used, err := s.store.UsedSpotIDs(userID, zoneID)
	if err != nil {
		return nil, err
	}
	rated, err := s.store.PositivelyRatedSpotIDs(userID, zoneID, positiveRatingThreshold)
	if err != nil {
		return nil, err
	}
	types, err := s.store.PreferredSpotTypeIDs(userID, zoneID, positiveRatingThreshold)
	if err != nil {
		return nil, err
	}
	return &signals{
		used:            toSet(used),
		positivelyRated: toSet(rated),
		preferredTypes:  toSet(types),
	}, nil
}

func (s *RecommendService) compositeScore(userID int, spot *db.ParkingSpot, sig *signals) float64 {
	score, _ := s.scorer.Score(userID, spot.ID)
	if sig.preferredTypes[spot.ParkingSpotTypeID] {
		score += preferredTypeBoost
	}
	if sig.positivelyRated[spot.ID] {
		score += positiveRateBoost
	}
	return score
}

// heuristic is the model-free path: prefer an unused spot of a preferred
// type, then any unused or positively rated spot, then anything left, picked
// at random within the winning tier.
func (s *RecommendService) heuristic(q entities.RecommendationQuery, sig *signals, active []db.ParkingSpot) (*entities.RecommendationResponse, error) {
	candidates, err := s.dropConflicting(active, q.StartTime, q.EndTime)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var newPreferred, fallback []db.ParkingSpot
	for _, spot := range candidates {
		unused := !sig.used[spot.ID]
		if unused && sig.preferredTypes[spot.ParkingSpotTypeID] {
			newPreferred = append(newPreferred, spot)
		}
		if unused || sig.positivelyRated[spot.ID] {
			fallback = append(fallback, spot)
		}
	}

	pool := candidates
	if len(newPreferred) > 0 {
		pool = newPreferred
	} else if len(fallback) > 0 {
		pool = fallback
	}

	pick := pool[s.intn(len(pool))]
	return spotToRecommendation(&pick, 0), nil
}

func (s *RecommendService) dropConflicting(spots []db.ParkingSpot, start, end *time.Time) ([]db.ParkingSpot, error) {
	if start == nil || end == nil {
		return spots, nil
	}
	ids := make([]int, len(spots))
	for i, spot := range spots {
		ids[i] = spot.ID
	}
	conflicted, err := s.conflict.FilterConflicting(ids, *start, *end)
	if err != nil {
		return nil, err
	}
	var free []db.ParkingSpot
	for _, spot := range spots {
		if !conflicted[spot.ID] {
			free = append(free, spot)
		}
	}
	return free, nil
}

func (s *RecommendService) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// seedRNG pins the heuristic's random source, for deterministic tests.
func (s *RecommendService) seedRNG(seed int64) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
}

func unusedFirst(active []db.ParkingSpot, used map[int]bool) []db.ParkingSpot {
	var unused []db.ParkingSpot
	for _, spot := range active {
		if !used[spot.ID] {
			unused = append(unused, spot)
		}
	}
	if len(unused) == 0 {
		return active
	}
	return unused
}

func spotToRecommendation(spot *db.ParkingSpot, score float64) *entities.RecommendationResponse {
	return &entities.RecommendationResponse{
		ParkingSpotID:     spot.ID,
		ParkingNumber:     spot.ParkingNumber,
		ParkingSpotTypeID: spot.ParkingSpotTypeID,
		SpotTypeName:      spot.SpotTypeName,
		ParkingZoneID:     spot.ParkingZoneID,
		ZoneName:          spot.ZoneName,
		Score:             score,
	}
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
