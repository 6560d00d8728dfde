package models

import "time"

// DashboardStats summarises the dataset for the landing page.
type DashboardStats struct {
	TotalClients       int            `json:"total_clients"`
	TotalPrograms      int            `json:"total_programs"`
	TotalEnrollments   int            `json:"total_enrollments"`
	EnrollmentsByState map[string]int `json:"enrollments_by_status"`
	RecentClients      []Client       `json:"recent_clients"`
	RecentPrograms     []Program      `json:"recent_programs"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// StatusCount is a grouped enrollment count.
type StatusCount struct {
	Status string `db:"status"`
	Total  int    `db:"total"`
}
