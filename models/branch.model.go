package models

import "gorm.io/gorm"

type Branch struct {
	gorm.Model
	Name      string `gorm:"unique;not null" json:"name"`
	Code      string `gorm:"type:varchar(16)" json:"code"`
	Address   string `json:"address"`
	IsDeleted bool   `gorm:"default:false" json:"is_deleted"`
}
