package cron

import (
	"fmt"
	"time"

	"github.com/campushq/event-portal-api/model"
)

// jobLogRetention is how long completed job logs are kept
const jobLogRetention = 30 * 24 * time.Hour

// CleanupExpiredBlacklist removes blacklist rows whose tokens have expired.
// An expired token fails JWT validation on its own, so the row no longer
// serves a purpose.
func (m *CronManager) CleanupExpiredBlacklist() (string, error) {
	result := m.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		return "", result.Error
	}

	return fmt.Sprintf("removed %d expired blacklist entries", result.RowsAffected), nil
}

// PruneJobLogs deletes cron job logs older than the retention window
func (m *CronManager) PruneJobLogs() (string, error) {
	cutoff := time.Now().Add(-jobLogRetention)

	result := m.db.Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", result.Error
	}

	return fmt.Sprintf("pruned %d job logs older than %s", result.RowsAffected, cutoff.Format("2006-01-02")), nil
}
