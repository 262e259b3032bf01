package productivity

import (
	"time"

	"caradmin/internal/domain/stats"
)

// Row is one admin in a ranking
type Row struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	CarsAdded         int        `json:"carsAdded"`
	SoldCars          int        `json:"soldCars"`
	ErrorsCount       int        `json:"errorsCount"`
	ProductivityScore int        `json:"productivityScore"`
	Level             string     `json:"level"`
	LevelClass        string     `json:"levelClass"`
	LastActivity      *time.Time `json:"lastActivity,omitempty"`
}

// Point is one day of the weekly series
type Point struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Report struct {
	Admins      []Row             `json:"admins"`
	Top         []Row             `json:"top"`
	Bottom      []Row             `json:"bottom"`
	Problematic []Row             `json:"problematic"`
	Week        []Point           `json:"week"`
	Cars        *stats.CarStats   `json:"cars,omitempty"`
	Errors      *stats.ErrorStats `json:"errors,omitempty"`
}
