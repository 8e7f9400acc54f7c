package models

import "time"

// LogAction names the kind of mutation a TaskLog row records.
type LogAction string

const (
	LogActionCreate        LogAction = "create"
	LogActionUpdateStatus  LogAction = "update_status"
	LogActionUpdateDetails LogAction = "update_details"
	LogActionComment       LogAction = "comment"
	LogActionTimeRecord    LogAction = "time_record"
)

// TaskLog is the append-only audit trail of a task. Rows are written once
// per meaningful mutation and never updated or deleted here.
type TaskLog struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	TaskID         uint        `gorm:"not null;index" json:"task_id"`
	UserID         uint        `gorm:"not null" json:"user_id"`
	Action         LogAction   `gorm:"type:varchar(32);not null" json:"action"`
	PreviousStatus *TaskStatus `gorm:"type:varchar(32)" json:"previous_status"`
	NewStatus      *TaskStatus `gorm:"type:varchar(32)" json:"new_status"`
	Notes          string      `json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
}
