package schedule

import (
	"fmt"
	"time"

	"github.com/cafecanastra/conteudo/internal/models"
)

// IsEligible reports whether automatic generation may run at the given
// wall-clock time. The window is inclusive on both ends: exactly
// startHour:00 and exactly endHour:00 are eligible.
func IsEligible(cfg models.ScheduleConfig, now time.Time) bool {
	if !cfg.IsEnabled {
		return false
	}

	minutes := now.Hour()*60 + now.Minute()
	return minutes >= cfg.StartHour*60 && minutes <= cfg.EndHour*60
}

// Window formats the allowed hour range for rejection responses.
func Window(cfg models.ScheduleConfig) string {
	return fmt.Sprintf("%02d:00-%02d:00", cfg.StartHour, cfg.EndHour)
}

// Clock formats a time the way rejection responses report it.
func Clock(now time.Time) string {
	return now.Format("15:04")
}
