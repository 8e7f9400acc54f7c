package utils

import (
	"log"
	"time"

	"letterdesk/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeReminderScheduler sets up the daily due-date reminder job
func InitializeReminderScheduler(db *gorm.DB) *cron.Cron {
	log.Println("[REMINDER] Initializing due-date reminder scheduler...")

	c := cron.New()

	// Run daily at 9 AM to flag tasks due within 48 hours
	c.AddFunc("0 9 * * *", func() {
		log.Println("[REMINDER] Running daily due-date check...")
		ProcessDueSoonTasks(db)
	})

	c.Start()
	log.Println("[REMINDER] Reminder scheduler started - runs daily at 9 AM")
	return c
}

// ProcessDueSoonTasks logs open tasks whose due date falls within the
// next 48 hours so operators can chase them.
func ProcessDueSoonTasks(db *gorm.DB) {
	now := time.Now()
	twoDaysFromNow := now.AddDate(0, 0, 2)

	var dueSoon []models.Task
	err := db.
		Where("is_active = ? AND due_date IS NOT NULL", true).
		Where("status NOT IN ?", []models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusRejected}).
		Where("due_date BETWEEN ? AND ?", now, twoDaysFromNow).
		Preload("AssignedTo").
		Find(&dueSoon).Error
	if err != nil {
		log.Printf("[REMINDER] Error fetching due-soon tasks: %v", err)
		return
	}

	log.Printf("[REMINDER] Found %d tasks due within 48 hours", len(dueSoon))

	for _, task := range dueSoon {
		assignee := "unassigned"
		if task.AssignedTo != nil {
			assignee = task.AssignedTo.Name
		}
		log.Printf("[REMINDER] Task %d (%s) due %s, assignee: %s",
			task.ID, task.Title, task.DueDate.Format("2006-01-02"), assignee)
	}
}
