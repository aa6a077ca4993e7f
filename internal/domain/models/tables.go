// internal/domain/models/tables.go
package models

// Backend table (collection) names.
const (
	TableStudents                  = "students"
	TableClasses                   = "classes"
	TableDormitories               = "dormitories"
	TableCourses                   = "courses"
	TableAcademicPermissions       = "academic_permissions"
	TableAcademicAbsences          = "academic_absences"
	TableDormitoryPermissions      = "dormitory_permissions"
	TableDormitoryPrayerAbsences   = "dormitory_prayer_absences"
	TableDormitoryCeremonyAbsences = "dormitory_ceremony_absences"
	TableProfiles                  = "profiles"
)

// DateLayout is the storage format of every event date.
const DateLayout = "2006-01-02"
