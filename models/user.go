package models

import (
	"time"
)

// Role values stored in users.role.
const (
	RoleFaculty  = "FACULTY"
	RoleConvener = "CONVENER"
	RoleHOD      = "HOD"
	RoleAdmin    = "ADMIN"
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName   string     `gorm:"column:full_name" json:"full_name"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	Role       string     `gorm:"column:role" json:"role"`
	Department string     `gorm:"column:department" json:"department"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// CourseCoordinatorAssignment maps a coordinator to a course, optionally
// scoped to a single term. Coordinator is a capability, not a primary role:
// faculty, conveners or HODs can all hold one of these rows.
type CourseCoordinatorAssignment struct {
	AssignmentID  int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	CoordinatorID int        `gorm:"column:coordinator_id" json:"coordinator_id"`
	CourseID      int        `gorm:"column:course_id" json:"course_id"`
	TermID        *int       `gorm:"column:term_id" json:"term_id,omitempty"`
	IsActive      bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Coordinator *User `gorm:"foreignKey:CoordinatorID" json:"coordinator,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (CourseCoordinatorAssignment) TableName() string {
	return "course_coordinator_assignments"
}
