package model

import "time"

// Note mapped from table <note>
type Note struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id" form:"id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null;index:idx_note_name" json:"name" form:"name"`
	Description string    `gorm:"column:description;type:text" json:"description" form:"description"`
	Image       string    `gorm:"column:image;type:varchar(255);default:''" json:"image" form:"image"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index:idx_note_created_at" json:"createdAt" form:"createdAt"`
}
