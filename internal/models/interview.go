package models

import "time"

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	LevelJunior       = "junior"
	LevelIntermediate = "intermediate"
	LevelSenior       = "senior"
)

type Interview struct {
	ID     uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"column:user_id;index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Optional; must belong to the same user (validated, not a DB constraint).
	ResumeID *uint   `gorm:"column:resume_id;index" json:"resume_id,omitempty"`
	Resume   *Resume `gorm:"foreignKey:ResumeID" json:"-"`

	Role    string `gorm:"column:role;type:text" json:"role"`
	Level   string `gorm:"column:level;type:text" json:"level"`
	Persona string `gorm:"column:persona;type:text" json:"persona"`

	// in_progress -> completed | cancelled; both terminal.
	Status string `gorm:"column:status;type:text;index" json:"status"`

	StartedAt time.Time  `gorm:"column:started_at;index" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
}

func (Interview) TableName() string { return "interviews" }

func (i *Interview) Terminal() bool { return i.Status != StatusInProgress }

func ValidLevel(level string) bool {
	switch level {
	case LevelJunior, LevelIntermediate, LevelSenior:
		return true
	}
	return false
}
