// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User doubles as the auth principal and the personnel directory:
// assigned_personnel on an order must name an active user.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Phone        string    `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:50;default:'维修工'" json:"role"` // 管理员, 项目经理, 维修工
	IsActive     bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// PersonnelExists checks the directory for an active user with the
// given name. Empty names fail validation at the handler, not here.
func PersonnelExists(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where("name = ? AND is_active = ?", name, true).Count(&count).Error
	return count > 0, err
}
