package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/campushq/event-portal-api/model"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every hour: purge blacklist entries for tokens that already expired
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.runJob("cleanup_expired_blacklist", m.CleanupExpiredBlacklist)
	})
	if err != nil {
		return err
	}

	// Daily at 3 AM: prune old cron job logs
	_, err = m.cron.AddFunc("0 0 3 * * *", func() {
		m.runJob("prune_job_logs", m.PruneJobLogs)
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// runJob executes a job with start/complete/failure bookkeeping
func (m *CronManager) runJob(jobName string, fn func() (string, error)) {
	log.Printf("[CRON] Starting job: %s at %s", jobName, time.Now().Format(time.RFC3339))

	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	m.db.Create(&entry)

	message, err := fn()
	now := time.Now()
	duration := int(now.Sub(entry.StartedAt).Milliseconds())

	if err != nil {
		log.Printf("[CRON] Error in job: %s - %v", jobName, err)
		m.db.Model(&entry).Updates(map[string]interface{}{
			"status":       "failed",
			"completed_at": now,
			"duration":     duration,
			"error_msg":    err.Error(),
		})
		return
	}

	log.Printf("[CRON] Completed job: %s - %s", jobName, message)
	m.db.Model(&entry).Updates(map[string]interface{}{
		"status":       "completed",
		"completed_at": now,
		"duration":     duration,
		"message":      message,
	})
}
