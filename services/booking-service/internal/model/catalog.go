package model

import "time"

type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration"`
	Price           string    `json:"price"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ServiceFilter struct {
	Category   string
	Query      string
	ActiveOnly bool
}

type Staff struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Specialization  string    `json:"specialization"`
	Bio             string    `json:"bio,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	Available       bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
}

type StaffFilter struct {
	AvailableOnly bool
}

// CustomerContact is the name and phone captured on booking and synced to the profile.
type CustomerContact struct {
	CustomerID string
	Name       string
	Phone      string
}
