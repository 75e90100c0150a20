package domain

import "testing"

func TestNormalizeOrderDefaults(t *testing.T) {
	o := NormalizeOrder(ProductionOrder{ID: "OP-1"})

	if o.Status != StatusPendiente {
		t.Fatalf("expected Pendiente, got %q", o.Status)
	}
	if o.QuantityUnit != "millares" {
		t.Fatalf("expected millares, got %q", o.QuantityUnit)
	}
	if o.Materials == nil || o.Inks == nil || o.Events == nil {
		t.Fatal("expected nil collections initialized")
	}
}

func TestNormalizeOrderKeepsExistingValues(t *testing.T) {
	o := NormalizeOrder(ProductionOrder{
		ID: "OP-1", Status: StatusEnProgreso, QuantityUnit: "rollos",
		Events: []ProductionEvent{{ID: "E-1"}},
	})

	if o.Status != StatusEnProgreso || o.QuantityUnit != "rollos" {
		t.Fatalf("expected values untouched, got %+v", o)
	}
	if len(o.Events) != 1 {
		t.Fatalf("expected events kept, got %d", len(o.Events))
	}
}

func TestTargetQuantity(t *testing.T) {
	o := ProductionOrder{Quantity: 50, QuantityUnit: "millares"}
	if got := o.TargetQuantity(); got != 50000 {
		t.Fatalf("expected 50000 labels, got %v", got)
	}

	o.LabelsPlanned = Float64(10000)
	if got := o.TargetQuantity(); got != 10000 {
		t.Fatalf("labelsPlanned must win, got %v", got)
	}

	o = ProductionOrder{Quantity: 200, QuantityUnit: "rollos"}
	if got := o.TargetQuantity(); got != 200 {
		t.Fatalf("expected raw quantity for other units, got %v", got)
	}
}
