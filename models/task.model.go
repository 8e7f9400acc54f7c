package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus values form a fixed state machine; transitions are validated
// by the taskflow package before any write.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "new"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusRejected   TaskStatus = "rejected"
	TaskStatusPostponed  TaskStatus = "postponed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	gorm.Model
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(32);default:'new';index" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(16);default:'medium'" json:"priority"`
	CreatedByID    uint         `gorm:"not null;index" json:"created_by_id"`
	CreatedBy      *User        `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedToID   *uint        `gorm:"index" json:"assigned_to_id"`
	AssignedTo     *User        `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	BranchID       *uint        `gorm:"index" json:"branch_id"`
	DueDate        *time.Time   `json:"due_date"`
	CompletionDate *time.Time   `json:"completion_date"`
	Notes          string       `json:"notes"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
}
