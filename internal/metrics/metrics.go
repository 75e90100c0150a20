// Package metrics aggregates scrap activity against production baselines and
// computes target compliance and bonus payout factors. Unlike the cost
// engine, these functions prefer skip/undefined semantics over errors:
// compliance reports must always render something, even from partial data.
package metrics

import (
	"math"

	"github.com/venkilabels/quality-hub/internal/domain"
)

// ScrapTotals accumulates scrap cost and quantity per captured unit.
type ScrapTotals struct {
	Cost   float64 `json:"cost"`
	G      float64 `json:"g"`
	M      float64 `json:"m"`
	Labels float64 `json:"labels"`
	Unit   float64 `json:"unit"`
}

func (t *ScrapTotals) add(e domain.ScrapEntry) {
	t.Cost += e.Cost
	switch e.UnitCaptured {
	case domain.UomGram:
		t.G += e.Qty
	case domain.UomMeter:
		t.M += e.Qty
	case domain.UomLabels:
		t.Labels += e.Qty
	case domain.UomUnit:
		t.Unit += e.Qty
	}
}

// Filters restricts a scrap aggregation. Zero values mean "no filter"; dates
// are ISO day strings compared lexically.
type Filters struct {
	From       string
	To         string
	OperatorID string
	MachineID  string
	OrderID    string
	Category   domain.MaterialType
	Cause      string
}

func (f Filters) pass(e domain.ScrapEntry) bool {
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	if f.OperatorID != "" && e.OperatorID != f.OperatorID {
		return false
	}
	if f.MachineID != "" && e.MachineID != f.MachineID {
		return false
	}
	if f.OrderID != "" && e.OrderID != f.OrderID {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Cause != "" && e.Cause != f.Cause {
		return false
	}
	return true
}

// Aggregate is the result of AggregateScrap: overall totals plus breakdowns
// by material type, cause, operator, machine and order.
type Aggregate struct {
	Totals         ScrapTotals            `json:"totals"`
	ByMaterialType map[string]ScrapTotals `json:"byMaterialType"`
	ByCause        map[string]ScrapTotals `json:"byCause"`
	ByOperator     map[string]ScrapTotals `json:"byOperator"`
	ByMachine      map[string]ScrapTotals `json:"byMachine"`
	ByOrder        map[string]ScrapTotals `json:"byOrder"`
}

// AggregateScrap filters the entries and accumulates totals per dimension.
func AggregateScrap(entries []domain.ScrapEntry, f Filters) Aggregate {
	agg := Aggregate{
		ByMaterialType: map[string]ScrapTotals{},
		ByCause:        map[string]ScrapTotals{},
		ByOperator:     map[string]ScrapTotals{},
		ByMachine:      map[string]ScrapTotals{},
		ByOrder:        map[string]ScrapTotals{},
	}

	bump := func(m map[string]ScrapTotals, key string, e domain.ScrapEntry) {
		t := m[key]
		t.add(e)
		m[key] = t
	}

	for _, e := range entries {
		if !f.pass(e) {
			continue
		}
		agg.Totals.add(e)
		bump(agg.ByMaterialType, string(e.Category), e)
		if e.Cause != "" {
			bump(agg.ByCause, e.Cause, e)
		}
		if e.OperatorID != "" {
			bump(agg.ByOperator, e.OperatorID, e)
		}
		if e.MachineID != "" {
			bump(agg.ByMachine, e.MachineID, e)
		}
		if e.OrderID != "" {
			bump(agg.ByOrder, e.OrderID, e)
		}
	}
	return agg
}

// ScrapPercentByQty is scrap over total output (scrap + good) by quantity,
// rounded to two decimals. Zero when there is no base.
func ScrapPercentByQty(scrapQty, goodQty float64) float64 {
	base := scrapQty + goodQty
	if base <= 0 {
		return 0
	}
	return round2(scrapQty / base * 100)
}

// ScrapPercentByCost is the analogous ratio using costs.
func ScrapPercentByCost(scrapCost, goodMaterialCost float64) float64 {
	base := scrapCost + goodMaterialCost
	if base <= 0 {
		return 0
	}
	return round2(scrapCost / base * 100)
}

// PayoutFactor models bonus eligibility: full payout at or under the target,
// then a linear decrease that reaches zero once actual scrap doubles the
// target. A nil or non-positive target always pays in full.
func PayoutFactor(actualPct float64, targetPct *float64) float64 {
	if targetPct == nil || *targetPct <= 0 {
		return 1
	}
	if actualPct <= *targetPct {
		return 1
	}
	excess := actualPct - *targetPct
	f := 1 - excess / *targetPct
	if f < 0 {
		return 0
	}
	return round3(f)
}

// TargetScope identifies which target override levels apply.
type TargetScope struct {
	OperatorID   string
	MachineID    string
	MaterialType domain.MaterialType
	Cause        string
}

// PickTarget resolves the applicable target by priority:
// operator > machine > materialType > cause > global. The first defined
// level wins outright; levels are never merged.
func PickTarget(targets domain.Targets, scope TargetScope) domain.TargetLevel {
	if scope.OperatorID != "" {
		if t, ok := targets.ByOperator[scope.OperatorID]; ok {
			return t
		}
	}
	if scope.MachineID != "" {
		if t, ok := targets.ByMachine[scope.MachineID]; ok {
			return t
		}
	}
	if scope.MaterialType != "" {
		if t, ok := targets.ByMaterialType[scope.MaterialType]; ok {
			return t
		}
	}
	if scope.Cause != "" {
		if t, ok := targets.ByCause[scope.Cause]; ok {
			return t
		}
	}
	return targets.Global
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
