package cars

import "caradmin/internal/domain/car"

// CarRequest is the console body for creating and editing a car
type CarRequest struct {
	Brand       string     `json:"brand" validate:"required"`
	Model       string     `json:"model" validate:"required"`
	Year        int        `json:"year" validate:"omitempty,min=1950,max=2100"`
	Mileage     float64    `json:"mileage" validate:"gte=0"`
	VIN         string     `json:"vin" validate:"omitempty,max=32"`
	Gearbox     string     `json:"gearbox"`
	Fuel        string     `json:"fuel"`
	PowerValue  float64    `json:"powerValue" validate:"gte=0"`
	PowerType   string     `json:"powerType"`
	Engine      float64    `json:"engine" validate:"gte=0"`
	Drive       string     `json:"drive"`
	Price       float64    `json:"price" validate:"gte=0"`
	IsSold      bool       `json:"isSold"`
	Promo       bool       `json:"promo"`
	PromoSold   bool       `json:"promoSold"`
	Description string     `json:"description"`
	Files       []car.File `json:"files,omitempty"`
}

func (r CarRequest) toCar() car.Car {
	return car.Car{
		Brand:       r.Brand,
		Model:       r.Model,
		Year:        r.Year,
		Mileage:     r.Mileage,
		VIN:         r.VIN,
		Gearbox:     r.Gearbox,
		Fuel:        r.Fuel,
		PowerValue:  r.PowerValue,
		PowerType:   r.PowerType,
		Engine:      r.Engine,
		Drive:       r.Drive,
		Price:       r.Price,
		IsSold:      r.IsSold,
		Promo:       r.Promo,
		PromoSold:   r.PromoSold,
		Description: r.Description,
		Files:       r.Files,
	}
}

// AdminCars is the answer of GET /cars/by-admin/:adminId
type AdminCars struct {
	AdminID    int64     `json:"adminId"`
	Cars       []car.Car `json:"cars"`
	AddedWeek  int       `json:"addedThisWeek"`
	SoldCount  int       `json:"sold"`
	ListedOnly int       `json:"listed"`
}
