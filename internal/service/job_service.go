package service

import (
	"fmt"

	"smartpark/internal/logger"
	"smartpark/internal/recommend"
)

// FeedbackSource supplies the implicit training set for the recommender.
type FeedbackSource interface {
	FeedbackEntries(minRating int) ([]recommend.Interaction, error)
}

// ReservationSweeper is the status-maintenance slice of the reservation
// store used by the cron jobs.
type ReservationSweeper interface {
	GetActiveReservationIDsPastEndTime() ([]int, error)
	UpdateReservationStatuses(ids []int, newStatus string) (int64, error)
}

// JobService hosts the cron-driven maintenance work: sweeping ended
// reservations to finished and retraining the recommendation model.
type JobService struct {
	sweeper  ReservationSweeper
	feedback FeedbackSource
	scorer   *recommend.Scorer
	trainCfg recommend.Config
	log      *logger.Entry
}

func NewJobService(sweeper ReservationSweeper, feedback FeedbackSource, scorer *recommend.Scorer, trainCfg recommend.Config) *JobService {
	return &JobService{
		sweeper:  sweeper,
		feedback: feedback,
		scorer:   scorer,
		trainCfg: trainCfg,
		log:      logger.GetLogger().WithComponent("job_service"),
	}
}

// UpdateFinishedReservations marks active reservations whose end time has
// passed as finished.
func (s *JobService) UpdateFinishedReservations() error {
	ids, err := s.sweeper.GetActiveReservationIDsPastEndTime()
	if err != nil {
		return fmt.Errorf("cron job: failed to get active reservations past end time: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	updated, err := s.sweeper.UpdateReservationStatuses(ids, statusFinished)
	if err != nil {
		return fmt.Errorf("cron job: failed to update reservation statuses: %w", err)
	}
	s.log.WithFields(logger.Fields{"count": updated}).Info("marked reservations finished")
	return nil
}

// RetrainRecommender rebuilds the preference model from current reservation
// and review history and atomically publishes it. With no feedback at all the
// live model is cleared, switching recommendations to the heuristic path.
func (s *JobService) RetrainRecommender() error {
	entries, err := s.feedback.FeedbackEntries(positiveRatingThreshold)
	if err != nil {
		return fmt.Errorf("cron job: failed to load feedback entries: %w", err)
	}

	model := recommend.Train(s.trainCfg, entries)
	s.scorer.Swap(model)

	if model == nil {
		s.log.Info("no feedback to train on, recommender running heuristic only")
		return nil
	}
	s.log.WithFields(logger.Fields{"interactions": len(entries)}).Info("recommender model retrained")
	return nil
}
