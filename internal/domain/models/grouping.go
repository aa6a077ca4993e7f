// internal/domain/models/grouping.go
package models

import "time"

// Class is an academic grouping of students. No hierarchy.
type Class struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Name      string    `bson:"name" json:"name" gorm:"column:name;not null"`
	NameCI    string    `bson:"name_ci" json:"name_ci" gorm:"column:name_ci;uniqueIndex"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (Class) TableName() string { return TableClasses }

// Dormitory is a residential grouping of students.
type Dormitory struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Name      string    `bson:"name" json:"name" gorm:"column:name;not null"`
	NameCI    string    `bson:"name_ci" json:"name_ci" gorm:"column:name_ci;uniqueIndex"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (Dormitory) TableName() string { return TableDormitories }

// Course tags academic absence records only.
type Course struct {
	ID        string    `bson:"_id" json:"id" gorm:"column:id;primaryKey"`
	Name      string    `bson:"name" json:"name" gorm:"column:name;not null"`
	NameCI    string    `bson:"name_ci" json:"name_ci" gorm:"column:name_ci;uniqueIndex"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" gorm:"column:created_at"`
}

func (Course) TableName() string { return TableCourses }

// Named is the id/name pair shared by classes, dormitories and courses.
type Named struct {
	ID   string `bson:"_id" json:"id" gorm:"column:id"`
	Name string `bson:"name" json:"name" gorm:"column:name"`
}
