// Package cbsd defines the transmitters deployed around a DPA.
package cbsd

import (
	"fmt"
	"strings"

	"github.com/wiless/neighborhood/geo"
)

type Category int
type Type int

var Categories = [...]string{
	"A",
	"B",
}

var Types = [...]string{
	"AP",
	"UE",
}

const (
	CategoryA Category = iota
	CategoryB
)

const (
	AP Type = iota
	UE
)

// AllCategories lists the categories in deployment order.
var AllCategories = []Category{CategoryA, CategoryB}

func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(Categories) {
		return "Unknown-Category"
	}
	return Categories[c]
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory accepts "A", "B", "CatA", "category_b" and similar spellings.
func ParseCategory(s string) (Category, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "CATEGORY")
	name = strings.TrimPrefix(name, "CAT")
	name = strings.Trim(name, "_- ")
	for i, v := range Categories {
		if v == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown CBSD category %q", s)
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(Types) {
		return "Unknown-Type"
	}
	return Types[t]
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	for i, v := range Types {
		if v == name {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown CBSD type %q", text)
}

// Cbsd is one deployed transmitter. It is not modified after deployment.
type Cbsd struct {
	Category   Category
	Type       Type
	Location   geo.Point
	HeightM    float64
	Indoor     bool
	EirpMaxDbm float64
	TxGainDbi  float64
}

func (c Cbsd) String() string {
	where := "outdoor"
	if c.Indoor {
		where = "indoor"
	}
	return fmt.Sprintf("Cat%s-%s@%v h=%.1fm %s eirp=%.1fdBm", c.Category, c.Type, c.Location, c.HeightM, where, c.EirpMaxDbm)
}
