package models

import (
	"gorm.io/gorm"
)

// UserPermission is a single custom grant on top of the role defaults.
// Either Code holds an explicit permission code (e.g. "view:tasks:all"),
// or BundleRole names a role whose whole default bundle is inherited.
type UserPermission struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID"`
	Code       string `gorm:"type:varchar(255)"`
	BundleRole Role   `gorm:"type:varchar(16)"`
	GrantedBy  uint
	IsDeleted  bool `gorm:"default:false"`
}
