package metrics

import "github.com/venkilabels/quality-hub/internal/domain"

// ComplianceScope selects which dimension a compliance report targets.
type ComplianceScope string

const (
	ScopeGlobal   ComplianceScope = "global"
	ScopeOperator ComplianceScope = "operator"
	ScopeMachine  ComplianceScope = "machine"
	ScopeOrder    ComplianceScope = "order"
)

// ComplianceParams are the inputs of BuildComplianceReport. Today is the
// current ISO day, injected so the report stays a pure function; it stands in
// for the completion date of orders still in progress.
type ComplianceParams struct {
	Targets          domain.Targets
	Scope            ComplianceScope
	Entries          []domain.ScrapEntry
	ProductionOrders []domain.ProductionOrder
	OperatorID       string
	MachineID        string
	OrderID          string
	From             string
	To               string
	Today            string
}

// GoodBaseline is the production baseline scrap is measured against.
type GoodBaseline struct {
	MaterialCostGood float64 `json:"materialCostGood"`
	G                float64 `json:"g"`
	M                float64 `json:"m"`
	Labels           float64 `json:"labels"`
}

// Payout carries the independently computed bonus factors. Overall is the
// minimum of whichever dimensions had a usable baseline, so the stricter
// dimension always governs; it defaults to 1 when neither was computable.
type Payout struct {
	Qty     *float64 `json:"qty,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
	Overall float64  `json:"overall"`
}

// ComplianceReport is the full output of BuildComplianceReport. Percentages
// are nil, not zero, when their baseline was empty.
type ComplianceReport struct {
	Scope       ComplianceScope    `json:"scope"`
	ScrapTotals ScrapTotals        `json:"scrapTotals"`
	Good        GoodBaseline       `json:"good"`
	QtyPct      *float64           `json:"qtyPct,omitempty"`
	CostPct     *float64           `json:"costPct,omitempty"`
	Target      domain.TargetLevel `json:"target"`
	Payout      Payout             `json:"payout"`
}

// BuildComplianceReport measures scrap against good production for a scope
// and date window, resolves the applicable target and computes payout
// factors. Only orders that are Completada or En Progreso count, dated by
// completion date (or Today while still running); scrap is restricted to
// entries linked to those orders.
func BuildComplianceReport(p ComplianceParams) ComplianceReport {
	relevant := make([]domain.ProductionOrder, 0, len(p.ProductionOrders))
	relevantIDs := make(map[string]bool)
	for _, o := range p.ProductionOrders {
		if !p.orderInScope(o) {
			continue
		}
		relevant = append(relevant, o)
		relevantIDs[o.ID] = true
	}

	scoped := make([]domain.ScrapEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if !p.scrapInScope(e, relevantIDs) {
			continue
		}
		scoped = append(scoped, e)
	}

	scrapTotals := AggregateScrap(scoped, Filters{}).Totals

	good := GoodBaseline{}
	for _, o := range relevant {
		actual := 0.0
		if o.ActualCost != nil {
			actual = *o.ActualCost
		}
		// actualCost includes the order's own scrap as a line item, so the
		// good-material baseline subtracts it back out. If OrderTotalCost
		// ever stops adding scrap, this must change with it.
		ownScrap := AggregateScrap(scoped, Filters{OrderID: o.ID}).Totals.Cost
		good.MaterialCostGood += actual - ownScrap

		good.G += goodDim(o.GoodQty, 'g', o.QuantityProduced)
		good.M += goodDim(o.GoodQty, 'm', o.LinearMetersProduced)
		good.Labels += goodDim(o.GoodQty, 'l', o.QuantityProduced)
	}

	report := ComplianceReport{
		Scope:       p.Scope,
		ScrapTotals: scrapTotals,
		Good:        good,
		Target:      PickTarget(p.Targets, TargetScope{OperatorID: p.OperatorID, MachineID: p.MachineID}),
	}

	// Quantity percentage prefers grams, then meters, then labels: the first
	// dimension with a real baseline wins.
	switch {
	case good.G > 0:
		report.QtyPct = domain.Float64(ScrapPercentByQty(scrapTotals.G, good.G))
	case good.M > 0:
		report.QtyPct = domain.Float64(ScrapPercentByQty(scrapTotals.M, good.M))
	case good.Labels > 0:
		report.QtyPct = domain.Float64(ScrapPercentByQty(scrapTotals.Labels, good.Labels))
	}
	if good.MaterialCostGood > 0 {
		report.CostPct = domain.Float64(ScrapPercentByCost(scrapTotals.Cost, good.MaterialCostGood))
	}

	if report.QtyPct != nil {
		report.Payout.Qty = domain.Float64(PayoutFactor(*report.QtyPct, report.Target.QtyPct))
	}
	if report.CostPct != nil {
		report.Payout.Cost = domain.Float64(PayoutFactor(*report.CostPct, report.Target.CostPct))
	}

	report.Payout.Overall = 1
	for _, f := range []*float64{report.Payout.Qty, report.Payout.Cost} {
		if f != nil && *f < report.Payout.Overall {
			report.Payout.Overall = *f
		}
	}
	return report
}

func (p ComplianceParams) orderInScope(o domain.ProductionOrder) bool {
	if o.Status != domain.StatusCompletada && o.Status != domain.StatusEnProgreso {
		return false
	}
	completion := o.CompletionDate
	if completion == "" && o.Status == domain.StatusEnProgreso {
		completion = p.Today
	}
	if p.From != "" && completion != "" && completion < p.From {
		return false
	}
	if p.To != "" && completion != "" && completion > p.To {
		return false
	}
	switch p.Scope {
	case ScopeOperator:
		if p.OperatorID != "" && o.OperatorID != p.OperatorID {
			return false
		}
	case ScopeMachine:
		if p.MachineID != "" && o.MachineID != p.MachineID {
			return false
		}
	case ScopeOrder:
		if p.OrderID != "" && o.ID != p.OrderID {
			return false
		}
	}
	return true
}

func (p ComplianceParams) scrapInScope(e domain.ScrapEntry, relevantIDs map[string]bool) bool {
	if p.From != "" && e.Date < p.From {
		return false
	}
	if p.To != "" && e.Date > p.To {
		return false
	}
	switch p.Scope {
	case ScopeOperator:
		if p.OperatorID != "" && e.OperatorID != p.OperatorID {
			return false
		}
	case ScopeMachine:
		if p.MachineID != "" && e.MachineID != p.MachineID {
			return false
		}
	case ScopeOrder:
		if p.OrderID != "" && e.OrderID != p.OrderID {
			return false
		}
	}
	// Orphan entries pass; order-linked scrap must belong to a relevant order.
	if e.OrderID != "" && !relevantIDs[e.OrderID] {
		return false
	}
	return true
}

func goodDim(gq *domain.GoodQty, dim byte, fallback float64) float64 {
	if gq != nil {
		switch dim {
		case 'g':
			if gq.G != nil && *gq.G > 0 {
				return *gq.G
			}
		case 'm':
			if gq.M != nil && *gq.M > 0 {
				return *gq.M
			}
		case 'l':
			if gq.Labels != nil && *gq.Labels > 0 {
				return *gq.Labels
			}
		}
	}
	return fallback
}
