package models

import "time"

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// InterviewMessage rows are immutable: there is no update or delete path.
type InterviewMessage struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InterviewID uint      `gorm:"column:interview_id;index;not null" json:"interview_id"`
	Interview   Interview `gorm:"foreignKey:InterviewID;constraint:OnDelete:CASCADE" json:"-"`

	Sender  string `gorm:"column:sender;type:text" json:"sender"`
	Content string `gorm:"column:content;type:text" json:"content"`

	// Strictly the ordering key within an interview.
	SentAt time.Time `gorm:"column:sent_at;index" json:"sent_at"`
}

func (InterviewMessage) TableName() string { return "interview_messages" }
