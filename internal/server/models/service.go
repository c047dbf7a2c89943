package models

import "time"

// Service is a name/port record managed through the dashboard.
type Service struct {
	ID        string
	Name      string
	Port      int
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
