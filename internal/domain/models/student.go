// internal/domain/models/student.go
package models

import "time"

// Student belongs to at most one class and at most one dormitory.
// Either reference may be nil; neither is required.
type Student struct {
	ID          string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Name        string    `bson:"name" json:"name" gorm:"column:name;not null"`
	NameCI      string    `bson:"name_ci" json:"name_ci" gorm:"column:name_ci;index"` // lowercase, diacritics-stripped
	ClassID     *string   `bson:"class_id,omitempty" json:"class_id,omitempty" gorm:"column:class_id;index"`
	DormitoryID *string   `bson:"dormitory_id,omitempty" json:"dormitory_id,omitempty" gorm:"column:dormitory_id;index"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at" gorm:"column:updated_at"`
}

func (Student) TableName() string { return TableStudents }
