package ymlfeed

import (
	"strconv"
	"strings"

	"caradmin/internal/domain/car"
)

var crossoverMarkers = []string{"x", "q", "cross", "sport", "crossover", "suv"}

// CategoryID puts crossovers into category 2 by looking at the model name;
// everything else is a generic car (1).
func CategoryID(c *car.Car) int {
	model := strings.ToLower(c.Model)
	for _, m := range crossoverMarkers {
		if strings.Contains(model, m) {
			return 2
		}
	}
	return 1
}

// CarName is the offer title, e.g. "Авто с пробегом BMW X5 2020 год. Цена 5 500 000 ₽".
func CarName(c *car.Car) string {
	year := ""
	if c.Year != 0 {
		year = strconv.Itoa(c.Year)
	}
	return "Авто с пробегом " + c.Brand + " " + c.Model + " " + year +
		" год. Цена " + FormatRU(c.Price) + " ₽"
}

// Description is the offer text placed into CDATA.
func Description(c *car.Car) string {
	engine := ""
	if c.Engine > 0 {
		engine = plainNumber(c.Engine) + "л"
	}
	power := ""
	if c.PowerValue > 0 {
		power = plainNumber(c.PowerValue) + "Л/C"
	}
	return "Как новый! Состояние идеал " + FormatRU(c.Mileage) + " км пробег " +
		engine + "(" + power + ") " + FuelType(c.Fuel) + ". " +
		DriveType(c.Drive) + ". " + GearboxType(c.Gearbox) + "."
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// FuelType normalizes the fuel field. Petrol is the fallback.
func FuelType(fuel string) string {
	f := strings.ToLower(fuel)
	switch {
	case containsAny(f, "дизель", "diesel"):
		return "Дизель"
	case containsAny(f, "гибрид", "hybrid"):
		return "Гибрид"
	case containsAny(f, "электро", "electric"):
		return "Электро"
	default:
		return "Бензин"
	}
}

// DriveType normalizes the drive field. Front-wheel is the fallback.
func DriveType(drive string) string {
	d := strings.ToLower(drive)
	switch {
	case containsAny(d, "полный", "awd", "4wd"):
		return "Полный привод"
	case containsAny(d, "задний", "rwd"):
		return "Задний привод"
	default:
		return "Передний привод"
	}
}

// GearboxType normalizes the gearbox field. Automatic is the fallback.
func GearboxType(gearbox string) string {
	g := strings.ToLower(gearbox)
	switch {
	case containsAny(g, "автомат", "automatic"):
		return "Автомат"
	case containsAny(g, "механик", "manual"):
		return "Механика"
	case containsAny(g, "вариатор", "cvt"):
		return "Вариатор"
	default:
		return "Автомат"
	}
}
