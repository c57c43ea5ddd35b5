package logging

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/scamguard/scamguard-backend/internal/models"
	"gorm.io/gorm"
)

const LogRetention = 30 * 24 * time.Hour

// StartRetention schedules a daily job that deletes system_logs older than
// retention. Stop the returned scheduler on shutdown.
func StartRetention(db *gorm.DB, retention time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(1).Day().At("03:00").SingletonMode().Do(func() {
		deleted, err := DeleteExpiredLogs(db, time.Now().Add(-retention))
		if err != nil {
			slog.Error("log cleanup failed", "operation", "log_retention", "error", err)
			return
		}
		if deleted > 0 {
			slog.Info("log cleanup completed", "deleted", deleted)
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.StartAsync()
	return scheduler, nil
}

func DeleteExpiredLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
