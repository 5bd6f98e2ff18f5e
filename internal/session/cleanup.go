package session

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Purger removes expired sessions
type Purger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartCleanup schedules periodic removal of expired sessions.
// The caller stops the returned scheduler on shutdown.
func StartCleanup(ctx context.Context, p Purger, schedule string, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { purgeExpired(ctx, p, log) }); err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Infof("Session cleanup scheduled: %s", schedule)
	return c, nil
}

func purgeExpired(ctx context.Context, p Purger, log *logrus.Logger) {
	n, err := p.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("Session cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Infof("Removed %d expired sessions", n)
	}
}
