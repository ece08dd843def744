package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wedding/internal/metrics"
	"github.com/Kerhoff/wedding/internal/repository"
)

// Notifier is told about every response that reached the thank-you screen.
// Failures are logged and never change the guest-facing result.
type Notifier interface {
	NotifyResponse(ctx context.Context, response Response) error
}

// Service is the central business logic layer that holds the repositories
// and drives the RSVP workflow against them.
type Service struct {
	logger   *logrus.Logger
	Guests   repository.GuestAdminRepository
	Stories  repository.StoryRepository
	metrics  *metrics.Metrics
	notifier Notifier
	now      func() time.Time
}

// New creates a new Service. m may be nil.
func New(logger *logrus.Logger,
	guests repository.GuestAdminRepository,
	stories repository.StoryRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		logger:  logger,
		Guests:  guests,
		Stories: stories,
		metrics: m,
		now:     time.Now,
	}
}

// SetNotifier installs the notifier used after completed responses.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}
