package units

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductSpec is the purchase-side description a recipe quantity converts
// into: the unit the product is bought and stocked in, plus the declared
// content of one container when the purchase unit is a vessel
// (e.g. bottle of 750 ml).
type ProductSpec struct {
	Name         string
	PurchaseUnit Unit
	SizeValue    decimal.Decimal
	SizeUnit     Unit
}

func (s ProductSpec) hasSize() bool {
	return s.SizeUnit != "" && s.SizeValue.IsPositive()
}

// ConversionError reports an ingredient/purchase unit pairing with no
// applicable conversion rule. It is distinct from a successful zero result.
type ConversionError struct {
	FromUnit Unit
	Spec     ProductSpec
}

func (e *ConversionError) Error() string {
	to := string(e.Spec.PurchaseUnit)
	if e.Spec.hasSize() {
		to = fmt.Sprintf("%s of %s %s", e.Spec.PurchaseUnit, e.Spec.SizeValue, e.Spec.SizeUnit)
	}
	return fmt.Sprintf("no conversion from %q to %q for product %q", e.FromUnit, to, e.Spec.Name)
}

// Grams per cup for common dry goods measured by volume in recipes but
// purchased by weight. Checked by substring against the product name.
var gramsPerCupOverrides = []struct {
	match string
	grams decimal.Decimal
}{
	{"rice", decimal.RequireFromString("185")},
	{"flour", decimal.RequireFromString("120")},
	{"sugar", decimal.RequireFromString("200")},
	{"butter", decimal.RequireFromString("227")},
}

func gramsPerCup(productName string) (decimal.Decimal, bool) {
	name := strings.ToLower(productName)
	for _, o := range gramsPerCupOverrides {
		if strings.Contains(name, o.match) {
			return o.grams, true
		}
	}
	return decimal.Zero, false
}

// tierFunc is one rung of the resolution chain: it returns the quantity in
// purchase units and whether the tier applied at all.
type tierFunc func(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, bool)

var tiers = []tierFunc{
	directTier,
	containerTier,
	densityTier,
	standardTier,
}

// Convert resolves a recipe-side quantity into purchase units of the product.
// Resolution walks an ordered chain of pure rules; the first applicable rule
// wins. A pairing no rule covers returns a *ConversionError.
func Convert(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, error) {
	for _, tier := range tiers {
		if out, ok := tier(qty, from, spec); ok {
			return out, nil
		}
	}
	return decimal.Zero, &ConversionError{FromUnit: from, Spec: spec}
}

func directTier(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, bool) {
	if from == spec.PurchaseUnit {
		return qty, true
	}
	return decimal.Zero, false
}

// containerTier converts through the declared content of one container:
// both the ingredient quantity and the container size are pivoted into the
// size unit's domain base (ml or g), yielding fractional containers.
func containerTier(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, bool) {
	if !spec.PurchaseUnit.IsContainer() || !spec.hasSize() {
		return decimal.Zero, false
	}
	domain := spec.SizeUnit.Domain()
	if domain == DomainUnknown {
		return decimal.Zero, false
	}
	from = bridgeOunces(from, domain)
	if from.Domain() != domain {
		return decimal.Zero, false
	}
	qtyBase := qty.Mul(basePerUnit[from])
	sizeBase := spec.SizeValue.Mul(basePerUnit[spec.SizeUnit])
	return qtyBase.Div(sizeBase), true
}

// densityTier handles dry goods measured by the cup in recipes but stocked by
// weight: the cup quantity is rewritten to grams and re-entered through the
// container/standard rules. The tier applies only when the rewrite leads
// somewhere; otherwise the chain falls through with the original unit.
func densityTier(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, bool) {
	if from != UnitCup {
		return decimal.Zero, false
	}
	gpc, ok := gramsPerCup(spec.Name)
	if !ok {
		return decimal.Zero, false
	}
	grams := qty.Mul(gpc)
	if out, ok := containerTier(grams, UnitGram, spec); ok {
		return out, true
	}
	if out, ok := standardTier(grams, UnitGram, spec); ok {
		return out, true
	}
	return decimal.Zero, false
}

// standardTier converts between raw measurement units of the same domain via
// the base-unit pivot.
func standardTier(qty decimal.Decimal, from Unit, spec ProductSpec) (decimal.Decimal, bool) {
	domain := spec.PurchaseUnit.Domain()
	if domain == DomainUnknown {
		return decimal.Zero, false
	}
	from = bridgeOunces(from, domain)
	if from.Domain() != domain {
		return decimal.Zero, false
	}
	return qty.Mul(basePerUnit[from]).Div(basePerUnit[spec.PurchaseUnit]), true
}

// bridgeOunces reads "oz" as fluid ounces when the target side measures
// volume. Bars write liquor pours as oz; bottles are sized in ml.
func bridgeOunces(from Unit, target Domain) Unit {
	if from == UnitOunce && target == DomainVolume {
		return UnitFluidOunce
	}
	return from
}
