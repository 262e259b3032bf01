package car

import "time"

// File is a car image stored by the backend
type File struct {
	ID   int64  `json:"id,omitempty"`
	Path string `json:"path"`
	// URL is the resolved address, filled in for console responses only
	URL string `json:"url,omitempty"`
}

// Owner is the admin who added the car
type Owner struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Car mirrors the backend car listing
type Car struct {
	ID          int64      `json:"id"`
	Brand       string     `json:"brand"`
	Model       string     `json:"model"`
	Year        int        `json:"year"`
	Mileage     float64    `json:"mileage"`
	VIN         string     `json:"vin"`
	Gearbox     string     `json:"gearbox"`
	Fuel        string     `json:"fuel"`
	PowerValue  float64    `json:"powerValue"`
	PowerType   string     `json:"powerType"`
	Engine      float64    `json:"engine"`
	Drive       string     `json:"drive"`
	Price       float64    `json:"price"`
	IsSold      bool       `json:"isSold"`
	Promo       bool       `json:"promo"`
	PromoSold   bool       `json:"promoSold"`
	Description string     `json:"description"`
	Files       []File     `json:"files,omitempty"`
	Admin       *Owner     `json:"admin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Listed reports whether the car is on sale: not sold and not deleted.
func (c *Car) Listed() bool {
	return !c.IsSold && c.DeletedAt == nil
}

// AddedSince reports whether the car was created at or after t.
func (c *Car) AddedSince(t time.Time) bool {
	return !c.CreatedAt.Before(t)
}

// ListQuery is the query string of GET /cars
type ListQuery struct {
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=ASC DESC asc desc"`
	Random    bool   `form:"random"`
}

// SearchRequest is forwarded to POST /cars/search as is
type SearchRequest map[string]any

// BrandModels groups model names under a brand
type BrandModels struct {
	Brand  string   `json:"brand"`
	Models []string `json:"models"`
	Count  int      `json:"count,omitempty"`
}
