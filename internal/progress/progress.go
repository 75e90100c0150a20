// Package progress derives an order's produced quantities from its
// append-only event log. Replay is the single source of truth: stored
// progress fields are overwritten by it after every append and on rehydration.
package progress

import "github.com/venkilabels/quality-hub/internal/domain"

// Progress is the derived output of one replay.
type Progress struct {
	QuantityProduced     float64
	LinearMetersProduced float64
	ProgressPercentage   float64
}

// Recalculate replays the full event log and returns the derived progress.
// It is a pure function of the order: replaying the same log any number of
// times yields the same result. Scrap events never reduce produced output;
// scrap is cost-tracked separately.
func Recalculate(o domain.ProductionOrder) Progress {
	var labelTotal, meterTotal float64

	for _, ev := range o.Events {
		if ev.Type != domain.EventGoodProduction || ev.Quantity == nil {
			continue
		}
		switch ev.Unit {
		case domain.UomLabels:
			labelTotal += *ev.Quantity
		case domain.UomMeter:
			meterTotal += *ev.Quantity
		}
	}

	var labelsFromMeters, metersFromLabels float64
	if o.LabelsPerMeter != nil && *o.LabelsPerMeter > 0 {
		labelsFromMeters = meterTotal * *o.LabelsPerMeter
		metersFromLabels = labelTotal / *o.LabelsPerMeter
	}

	quantity := labelTotal + labelsFromMeters
	meters := meterTotal + metersFromLabels

	pct := 0.0
	if target := o.TargetQuantity(); target > 0 {
		pct = quantity / target * 100
	}
	// Overproduction is allowed internally but never displayed past 100%.
	if pct > 100 {
		pct = 100
	}

	return Progress{
		QuantityProduced:     quantity,
		LinearMetersProduced: meters,
		ProgressPercentage:   pct,
	}
}

// Apply writes the replay result back onto the order's derived fields.
func Apply(o domain.ProductionOrder) domain.ProductionOrder {
	p := Recalculate(o)
	o.QuantityProduced = p.QuantityProduced
	o.LinearMetersProduced = p.LinearMetersProduced
	o.ProgressPercentage = p.ProgressPercentage
	return o
}
