package session

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// StartSweeper schedules Sweep on the given cron spec, e.g. "@every 1m".
// The caller stops the returned cron on shutdown.
func (s *Store) StartSweeper(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	s.log.Infof("Session sweeper scheduled: %s", spec)
	return c, nil
}
