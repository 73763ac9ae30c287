package server

import (
	"context"
	"time"
)

// poll refreshes the board on every tick and on manual requests until the
// server is stopped. Cycles never overlap; ticks that arrive while a cycle
// is running are dropped by the ticker.
func (s *Server) poll() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Infof("Poll loop started, interval %v", s.pollInterval)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.board.Refresh(ctx)
		case <-s.refresh:
			s.logger.Debug("Manual refresh requested")
			s.board.ResolveAddresses(ctx)
			s.board.Refresh(ctx)
		case <-s.done:
			s.logger.Info("Poll loop received shutdown signal.")
			return
		}
	}
}
