package stats

import "time"

// LeadCounts is the per-admin lead breakdown
type LeadCounts struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
	Lost       int `json:"lost"`
}

// RecentLead is a short lead row shown on the admin stats page
type RecentLead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminProductivity is one row of GET /stats/productivity, and the body of
// GET /stats/admin/:id/productivity
type AdminProductivity struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	CarsAdded         int          `json:"carsAdded"`
	SoldCars          int          `json:"soldCars"`
	ErrorsCount       int          `json:"errorsCount"`
	ProductivityScore int          `json:"productivityScore"`
	LastActivity      *time.Time   `json:"lastActivity,omitempty"`
	IsActive          bool         `json:"isActive"`
	Leads             *LeadCounts  `json:"leads,omitempty"`
	RecentLeads       []RecentLead `json:"recentLeads,omitempty"`
}

// DisplayName falls back to email
func (a *AdminProductivity) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// DailyCount is one point of a per-day series
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CarStats is returned by GET /stats/cars
type CarStats struct {
	Total     int          `json:"total"`
	Sold      int          `json:"sold"`
	Available int          `json:"available"`
	Daily     []DailyCount `json:"daily,omitempty"`
}

// ErrorStats is returned by GET /stats/errors
type ErrorStats struct {
	Total   int           `json:"total"`
	ByAdmin map[int64]int `json:"byAdmin,omitempty"`
}
