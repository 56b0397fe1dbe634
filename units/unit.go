package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a measurement or container unit as stored on products and recipe
// ingredients. Values are the canonical lowercase spellings; Parse accepts the
// looser spellings POS exports and suppliers use.
type Unit string

const (
	// volume
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitGallon     Unit = "gal"
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tbsp"
	UnitTeaspoon   Unit = "tsp"
	UnitFluidOunce Unit = "fl-oz"

	// weight
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"
	UnitOunce    Unit = "oz"
	UnitPound    Unit = "lb"

	// count
	UnitEach Unit = "unit"

	// containers (purchase side only; content declared via size value/unit)
	UnitBottle    Unit = "bottle"
	UnitJar       Unit = "jar"
	UnitCan       Unit = "can"
	UnitBag       Unit = "bag"
	UnitBox       Unit = "box"
	UnitContainer Unit = "container"
)

// Domain classifies a unit into its measurement domain. Containers have no
// domain of their own; their content size carries it.
type Domain int

const (
	DomainUnknown Domain = iota
	DomainVolume
	DomainWeight
	DomainCount
)

func (d Domain) String() string {
	switch d {
	case DomainVolume:
		return "volume"
	case DomainWeight:
		return "weight"
	case DomainCount:
		return "count"
	default:
		return "unknown"
	}
}

// Canonical ratios into the per-domain base units (ml for volume, g for weight).
var (
	mlPerCup        = decimal.RequireFromString("236.588")
	mlPerTablespoon = decimal.RequireFromString("14.7868")
	mlPerTeaspoon   = decimal.RequireFromString("4.92892")
	mlPerFluidOunce = decimal.RequireFromString("29.5735")
	mlPerGallon     = decimal.RequireFromString("3785.41")
	mlPerLiter      = decimal.RequireFromString("1000")

	gPerKilogram = decimal.RequireFromString("1000")
	gPerOunce    = decimal.RequireFromString("28.3495")
	gPerPound    = decimal.RequireFromString("453.592")
)

// basePerUnit is the amount of the domain base unit in one of the given unit.
var basePerUnit = map[Unit]decimal.Decimal{
	UnitMilliliter: decimal.NewFromInt(1),
	UnitLiter:      mlPerLiter,
	UnitGallon:     mlPerGallon,
	UnitCup:        mlPerCup,
	UnitTablespoon: mlPerTablespoon,
	UnitTeaspoon:   mlPerTeaspoon,
	UnitFluidOunce: mlPerFluidOunce,

	UnitGram:     decimal.NewFromInt(1),
	UnitKilogram: gPerKilogram,
	UnitOunce:    gPerOunce,
	UnitPound:    gPerPound,

	UnitEach: decimal.NewFromInt(1),
}

var unitDomains = map[Unit]Domain{
	UnitMilliliter: DomainVolume,
	UnitLiter:      DomainVolume,
	UnitGallon:     DomainVolume,
	UnitCup:        DomainVolume,
	UnitTablespoon: DomainVolume,
	UnitTeaspoon:   DomainVolume,
	UnitFluidOunce: DomainVolume,

	UnitGram:     DomainWeight,
	UnitKilogram: DomainWeight,
	UnitOunce:    DomainWeight,
	UnitPound:    DomainWeight,

	UnitEach: DomainCount,
}

var containerUnits = map[Unit]bool{
	UnitBottle:    true,
	UnitJar:       true,
	UnitCan:       true,
	UnitBag:       true,
	UnitBox:       true,
	UnitContainer: true,
}

// Domain returns the measurement domain of the unit, DomainUnknown for
// containers and unrecognized values.
func (u Unit) Domain() Domain {
	return unitDomains[u]
}

func (u Unit) IsContainer() bool {
	return containerUnits[u]
}

var aliases = map[string]Unit{
	"ml":          UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"l":           UnitLiter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"litre":       UnitLiter,
	"litres":      UnitLiter,
	"gal":         UnitGallon,
	"gallon":      UnitGallon,
	"gallons":     UnitGallon,
	"cup":         UnitCup,
	"cups":        UnitCup,
	"tbsp":        UnitTablespoon,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"tsp":         UnitTeaspoon,
	"teaspoon":    UnitTeaspoon,
	"teaspoons":   UnitTeaspoon,
	"fl-oz":       UnitFluidOunce,
	"fl oz":       UnitFluidOunce,
	"floz":        UnitFluidOunce,
	"fluid ounce": UnitFluidOunce,

	"g":         UnitGram,
	"gram":      UnitGram,
	"grams":     UnitGram,
	"kg":        UnitKilogram,
	"kilogram":  UnitKilogram,
	"kilograms": UnitKilogram,
	"oz":        UnitOunce,
	"ounce":     UnitOunce,
	"ounces":    UnitOunce,
	"lb":        UnitPound,
	"lbs":       UnitPound,
	"pound":     UnitPound,
	"pounds":    UnitPound,

	"unit":  UnitEach,
	"units": UnitEach,
	"each":  UnitEach,
	"ea":    UnitEach,
	"pc":    UnitEach,
	"pcs":   UnitEach,
	"piece": UnitEach,

	"bottle":     UnitBottle,
	"bottles":    UnitBottle,
	"jar":        UnitJar,
	"jars":       UnitJar,
	"can":        UnitCan,
	"cans":       UnitCan,
	"bag":        UnitBag,
	"bags":       UnitBag,
	"box":        UnitBox,
	"boxes":      UnitBox,
	"container":  UnitContainer,
	"containers": UnitContainer,
}

// Parse normalizes a raw unit string into a Unit.
func Parse(s string) (Unit, bool) {
	u, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}
