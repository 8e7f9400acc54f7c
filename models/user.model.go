package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the coarse classification of a user driving default permissions.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	gorm.Model
	Name      string `gorm:"default:''"`
	Email     string `gorm:"unique;not null"`
	Role      Role   `gorm:"type:varchar(16);default:'user'"`
	Password  string `gorm:"not null" json:"-"`
	BranchID  *uint
	Branch    *Branch    `gorm:"foreignKey:BranchID"`
	IsActive  bool       `gorm:"default:true"`
	LastLogin *time.Time `json:"last_login"`
	IsDeleted bool       `gorm:"default:false"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
