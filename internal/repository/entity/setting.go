package entity

import "time"

type Setting struct {
	Key         string `gorm:"primaryKey"`
	Value       string
	Description string
	UpdatedAt   time.Time
}

func (Setting) TableName() string {
	return "system_settings"
}
