package roster

import "time"

type Student struct {
	StudentID    string `gorm:"primaryKey" json:"student_id"`
	EnrollmentNo string `gorm:"uniqueIndex;not null" json:"enrollment_no"`
	Name         string `gorm:"not null" json:"name"`
	Batch        string `gorm:"index" json:"batch"`

	// Optional device signal captured at registration. Informational only;
	// the per-session reuse check in the attendance engine is what actually
	// deters device sharing.
	RegisteredDeviceSignal string    `json:"-"`
	CreatedAt              time.Time `json:"-"`
}

func (Student) TableName() string { return "roster.students" }
