package service

import (
	"context"
	"time"
)

// DigestCallback receives the response summary whenever it changed.
type DigestCallback func(summary *Summary)

// StartDigestScheduler sends the response summary once, then rebuilds it
// every interval and invokes the callback when the number of responses
// changed since the last run. It blocks until the context is
// cancelled, so it should be launched in a separate goroutine.
func (s *Service) StartDigestScheduler(ctx context.Context, interval time.Duration, callback DigestCallback) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Digest scheduler started")

	last := s.processDigest(ctx, -1, callback)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Digest scheduler stopped")
			return
		case <-ticker.C:
			last = s.processDigest(ctx, last, callback)
		}
	}
}

// processDigest fires the callback if the responded count moved away from
// last, and returns the count to compare against next time.
func (s *Service) processDigest(ctx context.Context, last int, callback DigestCallback) int {
	summary, err := s.Summary(ctx)
	if err != nil {
		s.logger.Errorf("Failed to build response digest: %v", err)
		return last
	}
	if summary.Responded == last {
		return last
	}
	callback(summary)
	return summary.Responded
}
