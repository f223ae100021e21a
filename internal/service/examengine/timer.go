package examengine

import (
	"context"
	"time"
)

// RunTimer вызывает Tick раз в интервал, пока сессия не завершится, не будет прервана
// или не отменится ctx. Для сессий без лимита времени сразу возвращается.
func (s *Session) RunTimer(ctx context.Context) {
	if s.TimeLimit() == 0 {
		return
	}
	interval := s.deps.Config.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if s.Tick(ctx) || !s.Active() {
				return
			}
		}
	}
}
