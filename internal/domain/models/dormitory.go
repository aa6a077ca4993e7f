// internal/domain/models/dormitory.go
package models

import "time"

// Dormitory leave types.
const (
	LeaveSick      = "sick_leave"
	LeaveGroup     = "group_leave"
	LeaveGeneral   = "general_leave"
	LeaveOvernight = "overnight_leave"
)

// LeaveTypes lists every leave type in display order.
var LeaveTypes = []string{LeaveSick, LeaveGroup, LeaveGeneral, LeaveOvernight}

// Dormitory absence statuses (alpha / izin / sakit).
const (
	AbsenceUnexcused = "unexcused"
	AbsenceExcused   = "excused"
	AbsenceSick      = "sick"
)

// AbsenceStatuses lists every dormitory absence status in display order.
var AbsenceStatuses = []string{AbsenceUnexcused, AbsenceExcused, AbsenceSick}

// DormitoryPermission is a leave granted to a dormitory student.
// At most one overnight leave per student per calendar month is allowed;
// the dormitory store enforces that before insert.
type DormitoryPermission struct {
	ID           string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	StudentID    string    `bson:"student_id" json:"student_id" gorm:"column:student_id;index;not null"`
	Date         string    `bson:"date" json:"date" gorm:"column:date;type:date;index;not null"`
	Type         string    `bson:"type" json:"type" gorm:"column:type;not null"`
	NumberOfDays int       `bson:"number_of_days" json:"number_of_days" gorm:"column:number_of_days;not null;default:1"`
	Reason       *string   `bson:"reason,omitempty" json:"reason,omitempty" gorm:"column:reason"`
	AcademicYear string    `bson:"academic_year" json:"academic_year" gorm:"column:academic_year;index:idx_dp_period"`
	Semester     string    `bson:"semester" json:"semester" gorm:"column:semester;index:idx_dp_period"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (DormitoryPermission) TableName() string { return TableDormitoryPermissions }

// PrayerAbsence records a missed congregational prayer slot.
type PrayerAbsence struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	StudentID string    `bson:"student_id" json:"student_id" gorm:"column:student_id;index;not null"`
	Date      string    `bson:"date" json:"date" gorm:"column:date;type:date;index;not null"`
	Prayer    string    `bson:"prayer" json:"prayer" gorm:"column:prayer;not null"`
	Status    string    `bson:"status" json:"status" gorm:"column:status;not null"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (PrayerAbsence) TableName() string { return TableDormitoryPrayerAbsences }

// CeremonyAbsence records a missed dormitory ceremony.
type CeremonyAbsence struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	StudentID string    `bson:"student_id" json:"student_id" gorm:"column:student_id;index;not null"`
	Date      string    `bson:"date" json:"date" gorm:"column:date;type:date;index;not null"`
	Status    string    `bson:"status" json:"status" gorm:"column:status;not null"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (CeremonyAbsence) TableName() string { return TableDormitoryCeremonyAbsences }

// IsLeaveType reports whether t is a known dormitory leave type.
func IsLeaveType(t string) bool {
	for _, lt := range LeaveTypes {
		if lt == t {
			return true
		}
	}
	return false
}

// IsAbsenceStatus reports whether s is a known dormitory absence status.
func IsAbsenceStatus(s string) bool {
	for _, st := range AbsenceStatuses {
		if st == s {
			return true
		}
	}
	return false
}
