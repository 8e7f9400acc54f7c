package models

import "time"

type TaskAttachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"not null;index" json:"task_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	FileSize   int64     `json:"file_size"`
	FileURL    string    `gorm:"not null" json:"file_url"`
	UploadedBy uint      `json:"uploaded_by"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
