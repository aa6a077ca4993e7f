// internal/domain/models/profile.go
package models

import "time"

// Roles. Each role sees its own dashboard.
const (
	RoleSuperAdmin     = "super_admin"
	RoleAcademicAdmin  = "academic_admin"
	RoleDormitoryAdmin = "dormitory_admin"
)

// Profile is an administrator account.
type Profile struct {
	ID           string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Username     string    `bson:"username" json:"username" gorm:"column:username;not null"`
	UsernameCI   string    `bson:"username_ci" json:"username_ci" gorm:"column:username_ci;uniqueIndex"`
	Role         string    `bson:"role" json:"role" gorm:"column:role;not null"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"password_hash,omitempty" gorm:"column:password_hash"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at" gorm:"column:updated_at"`
}

func (Profile) TableName() string { return TableProfiles }

// IsRole reports whether r is one of the known roles.
func IsRole(r string) bool {
	switch r {
	case RoleSuperAdmin, RoleAcademicAdmin, RoleDormitoryAdmin:
		return true
	}
	return false
}
