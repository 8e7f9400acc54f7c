package models

import "gorm.io/gorm"

type LetterStatus string

const (
	LetterStatusDraft    LetterStatus = "draft"
	LetterStatusSent     LetterStatus = "sent"
	LetterStatusArchived LetterStatus = "archived"
)

type Letter struct {
	gorm.Model
	Title       string       `gorm:"not null" json:"title"`
	Body        string       `json:"body"`
	Recipient   string       `json:"recipient"`
	Status      LetterStatus `gorm:"type:varchar(16);default:'draft'" json:"status"`
	TemplateID  *uint        `json:"template_id"`
	CreatedByID uint         `gorm:"not null;index" json:"created_by_id"`
	BranchID    *uint        `gorm:"index" json:"branch_id"`
	IsActive    bool         `gorm:"default:true" json:"is_active"`
}

type LetterTemplate struct {
	gorm.Model
	Name      string `gorm:"unique;not null" json:"name"`
	Body      string `json:"body"`
	IsDeleted bool   `gorm:"default:false" json:"is_deleted"`
}
