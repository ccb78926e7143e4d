package alerts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pricescout/internal/domain"
)

// Service handles the alert lifecycle and keeps the scheduler's job registry
// in step with the stored records.
type Service struct {
	store  Store
	sched  *Scheduler
	logger *zap.Logger
}

func NewService(store Store, sched *Scheduler, logger *zap.Logger) *Service {
	return &Service{store: store, sched: sched, logger: logger}
}

// Create registers a new alert and schedules its recurring price check.
func (s *Service) Create(ctx context.Context, email, productURL, title string, targetPrice float64) (*domain.PriceAlert, error) {
	alert := domain.NewPriceAlert(email, productURL, title, targetPrice)
	if err := s.store.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	s.sched.Schedule(alert.ID)
	s.logger.Info("alert created",
		zap.Int64("alert_id", alert.ID),
		zap.String("user_email", email),
		zap.Float64("target_price", targetPrice))
	return alert, nil
}

// List returns all alerts registered by one user.
func (s *Service) List(ctx context.Context, email string) ([]domain.PriceAlert, error) {
	return s.store.ListByEmail(ctx, email)
}

// Delete removes the alert record and cancels its recurring job. Deleting
// the record without cancelling the job would leave a job rechecking a
// missing alert forever, so the two always travel together.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.sched.Cancel(id)
	s.logger.Info("alert deleted", zap.Int64("alert_id", id))
	return nil
}
