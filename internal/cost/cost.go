// Package cost computes monetary cost at every level of a production order:
// per unit, per material usage, per routing operation and the full order
// roll-up. Unit/pricing-mode mismatches are hard errors; missing catalog
// references degrade to zero so historical orders keep rendering a total.
package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/units"
)

// ErrIncompatibleUnit reports a requested unit the material's pricing mode
// cannot price, including a per_roll mode with the needed conversion factor
// absent. Callers in save flows are expected to surface it, not swallow it.
var ErrIncompatibleUnit = errors.New("unidad incompatible con el modo de precio")

// UnitCost returns the cost of one unit of measure of the material,
// converting through the material's pricing mode.
func UnitCost(unit domain.Uom, m domain.Material) (float64, error) {
	p := m.Pricing
	switch p.Mode {
	case domain.PerGram:
		return p.Price, nil
	case domain.PerKilogram:
		// Catalog price is per kg; cost flows are captured in grams.
		return units.GramsToKg(p.Price), nil
	case domain.PerMeter:
		if unit == domain.UomMeter {
			return p.Price, nil
		}
	case domain.PerUnit:
		if unit == domain.UomUnit {
			return p.Price, nil
		}
	case domain.PerRoll:
		if unit == domain.UomMeter && p.LengthMetersPerRoll != nil {
			return units.PerRollToPerMeter(p.Price, *p.LengthMetersPerRoll)
		}
		if unit == domain.UomLabels && p.LabelsPerRoll != nil {
			return units.PerRollToPerLabel(p.Price, *p.LabelsPerRoll)
		}
	case domain.PerHour:
		if unit == domain.UomHour {
			return p.Price, nil
		}
	case domain.PerKWh:
		if unit == domain.UomKWh {
			return p.Price, nil
		}
	default:
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %s en %s (%s)", ErrIncompatibleUnit, unit, p.Mode, m.ID)
}

// MaterialUsageCost is quantity × unit cost for a material usage line.
func MaterialUsageCost(u domain.OrderMaterialUsage, m domain.Material) (float64, error) {
	unitCost, err := UnitCost(u.Unit, m)
	if err != nil {
		return 0, err
	}
	return u.Qty * unitCost, nil
}

// RoutingCost prices one routing operation: (setup + run hours) billed at the
// labor rate of the operator category (default category when unspecified) plus
// the machine rate. Unknown categories or machines bill at zero. Energy is an
// extension point, only charged when a rate is configured.
func RoutingCost(op domain.RoutingOperation, rates domain.RateTables) float64 {
	hours := op.SetupTimeH
	if op.RunTimeH != nil {
		hours += *op.RunTimeH
	}

	category := op.OperatorCategory
	if category == "" {
		category = "default"
	}
	labor := hours * rates.LaborRates[category]
	machine := hours * rates.MachineRates[op.MachineID]

	return labor + machine
}

// ToolingAmortizationCost spreads each tool's purchase cost over its
// amortization base and charges the units the order actually consumed
// (actuals when known, plan otherwise). Tools without a positive base are
// skipped rather than dividing by zero.
func ToolingAmortizationCost(tools []domain.Tooling, o domain.ProductionOrder) float64 {
	total := 0.0
	for _, t := range tools {
		if t.AmortizationUnits <= 0 {
			continue
		}
		var used float64
		switch t.Unit {
		case domain.ToolingLabels:
			used = firstSet(o.LabelsActual, o.LabelsPlanned)
		case domain.ToolingMeters:
			used = firstSet(o.MetersActual, o.MetersPlanned)
		default:
			continue
		}
		total += (t.PurchaseCost / t.AmortizationUnits) * used
	}
	return total
}

// OverheadCost is the flat per-order overhead plus total routing hours at the
// per-hour overhead rate.
func OverheadCost(o domain.ProductionOrder, rates domain.RateTables) float64 {
	hours := 0.0
	for _, op := range o.Routing {
		hours += op.SetupTimeH
		if op.RunTimeH != nil {
			hours += *op.RunTimeH
		}
	}

	overhead := 0.0
	if rates.OverheadPerOrder != nil {
		overhead += *rates.OverheadPerOrder
	}
	if rates.OverheadPerHour != nil {
		overhead += hours * *rates.OverheadPerHour
	}
	return overhead
}

// ScrapCostForOrder sums the cached cost of every scrap entry recorded
// against the order.
func ScrapCostForOrder(orderID string, entries []domain.ScrapEntry) float64 {
	total := 0.0
	for _, e := range entries {
		if e.OrderID == orderID {
			total += e.Cost
		}
	}
	return total
}

// OrderTotalCost rolls up materials, inks, routing, tooling amortization,
// overhead and real scrap cost into the order's actual cost, rounded to two
// decimals. Usages whose material is gone from the catalog, or whose unit no
// longer matches the material's pricing mode, contribute zero: catalogs
// evolve and old orders must still report a partial total.
func OrderTotalCost(o domain.ProductionOrder, materials []domain.Material, rates domain.RateTables, entries []domain.ScrapEntry) float64 {
	byID := make(map[string]domain.Material, len(materials))
	for _, m := range materials {
		byID[m.ID] = m
	}

	materialsCost := 0.0
	for _, u := range o.Materials {
		m, ok := byID[u.MaterialID]
		if !ok {
			continue
		}
		c, err := MaterialUsageCost(u, m)
		if err != nil {
			continue
		}
		materialsCost += c
	}

	// Mixed Pantone inks carry a pricePerGram derived from their formula
	// components, so consumption × price covers them too.
	inksCost := 0.0
	for _, ink := range o.Inks {
		inksCost += ink.Consumption * ink.PricePerGram
	}

	routingCost := 0.0
	for _, op := range o.Routing {
		routingCost += RoutingCost(op, rates)
	}

	toolingCost := ToolingAmortizationCost(o.Tooling, o)
	overhead := OverheadCost(o, rates)

	scrapReal := 0.0
	if o.ID != "" {
		scrapReal = ScrapCostForOrder(o.ID, entries)
	}

	return round2(materialsCost + inksCost + routingCost + toolingCost + overhead + scrapReal)
}

// ScrapEntryCost derives a scrap entry's cost from its captured quantity and
// the material's unit cost, rounded to four decimals. Entries with no
// quantity or unit cost zero; unit incompatibilities propagate so the save
// flow can reject the entry.
func ScrapEntryCost(e domain.ScrapEntry, m domain.Material) (float64, error) {
	if e.Qty == 0 || e.UnitCaptured == "" {
		return 0, nil
	}
	unitCost, err := UnitCost(e.UnitCaptured, m)
	if err != nil {
		return 0, err
	}
	return round4(e.Qty * unitCost), nil
}

// Variance compares an order's target and actual cost.
type Variance struct {
	Target      float64 `json:"target"`
	Actual      float64 `json:"actual"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variancePct"`
}

// OrderVariance computes actual − target, with the percentage relative to
// the target (zero when no target is set).
func OrderVariance(o domain.ProductionOrder) Variance {
	v := Variance{}
	if o.TargetCost != nil {
		v.Target = *o.TargetCost
	}
	if o.ActualCost != nil {
		v.Actual = *o.ActualCost
	}
	v.Variance = round2(v.Actual - v.Target)
	if v.Target > 0 {
		v.VariancePct = round2(v.Variance / v.Target * 100)
	}
	return v
}

func firstSet(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
