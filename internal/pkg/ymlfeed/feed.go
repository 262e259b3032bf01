// Package ymlfeed builds the Yandex-Market-style YML catalog of cars on sale.
// Marketplace importers compare the document byte by byte, so the layout
// below is fixed.
package ymlfeed

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"caradmin/internal/domain/car"
)

// Category is one <category> of the shop
type Category struct {
	ID       int    `yaml:"id"`
	ParentID int    `yaml:"parent_id,omitempty"`
	Name     string `yaml:"name"`
}

// ShopConfig describes the <shop> block and the URLs of each offer.
type ShopConfig struct {
	Name           string     `yaml:"name"`
	Company        string     `yaml:"company"`
	URL            string     `yaml:"url"`
	Currency       string     `yaml:"currency"`
	Categories     []Category `yaml:"categories"`
	DeliveryCost   int        `yaml:"delivery_cost"`
	DeliveryDays   string     `yaml:"delivery_days"`
	OfferURLBase   string     `yaml:"offer_url_base"`
	PictureURLBase string     `yaml:"picture_url_base"`
}

// DefaultShop is the Adena Trans catalog.
func DefaultShop() ShopConfig {
	return ShopConfig{
		Name:     "Adena Trans",
		Company:  "Adena Trans Company",
		URL:      "https://adenatrans.ru/",
		Currency: "RUB",
		Categories: []Category{
			{ID: 1, Name: "Автомобили"},
			{ID: 2, ParentID: 1, Name: "Кроссоверы"},
			{ID: 3, ParentID: 1, Name: "Седаны"},
			{ID: 4, ParentID: 1, Name: "Хэтчбеки"},
			{ID: 5, ParentID: 1, Name: "Универсалы"},
			{ID: 6, ParentID: 1, Name: "Купе"},
			{ID: 7, ParentID: 1, Name: "Кабриолеты"},
		},
		DeliveryCost:   0,
		DeliveryDays:   "1-3",
		OfferURLBase:   "https://adenatrans.ru/car/",
		PictureURLBase: "https://adenatrans.ru/api/images/cars/",
	}
}

// LoadShopConfig reads a YAML shop description. Keys missing from the file
// keep their default values.
func LoadShopConfig(path string) (ShopConfig, error) {
	cfg := DefaultShop()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read shop config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse shop config %s: %w", path, err)
	}
	if cfg.Currency == "" {
		cfg.Currency = "RUB"
	}
	return cfg, nil
}

// Result is a generated catalog.
type Result struct {
	Document string
	Offers   int
	Skipped  int
}

// Build renders the catalog for cars at the given time. Sold and deleted
// cars are skipped.
func Build(cars []car.Car, now time.Time, shop ShopConfig) Result {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<yml_catalog date="` + ISOTime(now) + `">` + "\n")
	b.WriteString("<shop>\n")
	b.WriteString("<name>" + EscapeXML(shop.Name) + "</name>\n")
	b.WriteString("<company>" + EscapeXML(shop.Company) + "</company>\n")
	b.WriteString("<url>" + EscapeXML(shop.URL) + "</url>\n")
	b.WriteString("<currencies>\n")
	b.WriteString(`<currency id="` + EscapeXML(shop.Currency) + `" rate="1"/>` + "\n")
	b.WriteString("</currencies>\n")
	b.WriteString("<categories>\n")
	for _, c := range shop.Categories {
		if c.ParentID > 0 {
			fmt.Fprintf(&b, "<category id=\"%d\" parentId=\"%d\">%s</category>\n", c.ID, c.ParentID, EscapeXML(c.Name))
		} else {
			fmt.Fprintf(&b, "<category id=\"%d\">%s</category>\n", c.ID, EscapeXML(c.Name))
		}
	}
	b.WriteString("</categories>\n")
	b.WriteString("<delivery-options>\n")
	fmt.Fprintf(&b, "<option cost=\"%d\" days=\"%s\"/>\n", shop.DeliveryCost, EscapeXML(shop.DeliveryDays))
	b.WriteString("</delivery-options>\n")
	b.WriteString("<offers>")

	res := Result{}
	for i := range cars {
		c := &cars[i]
		if !c.Listed() {
			res.Skipped++
			continue
		}
		writeOffer(&b, c, shop)
		res.Offers++
	}

	b.WriteString("\n</offers>\n</shop>\n</yml_catalog>")
	res.Document = b.String()
	return res
}

func writeOffer(b *strings.Builder, c *car.Car, shop ShopConfig) {
	id := strconv.FormatInt(c.ID, 10)

	b.WriteString("\n<offer id=\"" + id + "\" available=\"true\">\n")
	b.WriteString("<url>" + EscapeXML(shop.OfferURLBase+id) + "</url>\n")
	b.WriteString("<price>" + plainNumber(c.Price) + "</price>\n")
	b.WriteString("<currencyId>" + EscapeXML(shop.Currency) + "</currencyId>\n")
	b.WriteString("<categoryId>" + strconv.Itoa(CategoryID(c)) + "</categoryId>\n")
	b.WriteString("<picture>" + EscapeXML(shop.PictureURLBase+id) + "</picture>\n")
	b.WriteString("<vendor>" + EscapeXML(c.Brand) + "</vendor>\n")
	b.WriteString("<vendorCode>" + EscapeXML(c.VIN) + "</vendorCode>\n")
	b.WriteString("<name>" + EscapeXML(CarName(c)) + "</name>\n")
	b.WriteString("<description>\n")
	b.WriteString("<![CDATA[" + Description(c) + "]]>\n")
	b.WriteString("</description>\n")
	b.WriteString("<pickup>true</pickup>\n")
	b.WriteString("<delivery>true</delivery>\n")
	b.WriteString("</offer>")
}
