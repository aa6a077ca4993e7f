// internal/domain/models/academic.go
package models

import "time"

// Academic permission types. Sick and permission rows share one table.
const (
	PermissionTypeSick       = "sick"
	PermissionTypePermission = "permission"
)

// AcademicPermission is a sick or permission record for one student on one day.
type AcademicPermission struct {
	ID           string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	StudentID    string    `bson:"student_id" json:"student_id" gorm:"column:student_id;index;not null"`
	Date         string    `bson:"date" json:"date" gorm:"column:date;type:date;index;not null"`
	Type         string    `bson:"type" json:"type" gorm:"column:type;not null"`
	Reason       *string   `bson:"reason,omitempty" json:"reason,omitempty" gorm:"column:reason"`
	AcademicYear string    `bson:"academic_year" json:"academic_year" gorm:"column:academic_year;index:idx_ap_period"`
	Semester     string    `bson:"semester" json:"semester" gorm:"column:semester;index:idx_ap_period"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (AcademicPermission) TableName() string { return TableAcademicPermissions }

// AcademicAbsence is an unexcused absence from one course session.
type AcademicAbsence struct {
	ID           string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	StudentID    string    `bson:"student_id" json:"student_id" gorm:"column:student_id;index;not null"`
	Date         string    `bson:"date" json:"date" gorm:"column:date;type:date;index;not null"`
	CourseID     *string   `bson:"course_id,omitempty" json:"course_id,omitempty" gorm:"column:course_id;index"`
	AcademicYear string    `bson:"academic_year" json:"academic_year" gorm:"column:academic_year;index:idx_aa_period"`
	Semester     string    `bson:"semester" json:"semester" gorm:"column:semester;index:idx_aa_period"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (AcademicAbsence) TableName() string { return TableAcademicAbsences }

// IsPermissionType reports whether t is a stored academic permission type.
func IsPermissionType(t string) bool {
	return t == PermissionTypeSick || t == PermissionTypePermission
}
