package domain

// NormalizeOrder applies the default-if-absent policy for orders in one
// place: nil collections become empty, a blank status becomes Pendiente and a
// blank quantity unit defaults to millares (the shop counts label jobs in
// thousands). Callers that accept orders from outside the store are expected
// to pass them through here before use.
func NormalizeOrder(o ProductionOrder) ProductionOrder {
	if o.Status == "" {
		o.Status = StatusPendiente
	}
	if o.QuantityUnit == "" {
		o.QuantityUnit = "millares"
	}
	if o.Materials == nil {
		o.Materials = []OrderMaterialUsage{}
	}
	if o.Inks == nil {
		o.Inks = []InkUsage{}
	}
	if o.Events == nil {
		o.Events = []ProductionEvent{}
	}
	return o
}

// TargetQuantity is the planned output in labels: labelsPlanned when set,
// otherwise the order quantity scaled by 1000 for millares.
func (o ProductionOrder) TargetQuantity() float64 {
	if o.LabelsPlanned != nil && *o.LabelsPlanned > 0 {
		return *o.LabelsPlanned
	}
	if o.QuantityUnit == "millares" {
		return o.Quantity * 1000
	}
	return o.Quantity
}
