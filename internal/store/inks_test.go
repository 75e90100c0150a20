package store

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/pantone"
)

func testInkCatalog() []domain.Ink {
	return []domain.Ink{
		{ID: "PAN-BLK6C", Name: "Pantone Black 6 C", PricePerGram: 0.04, Hex: "#2D2926"},
		{ID: "PAN-YLW012C", Name: "Pantone Yellow 012 C", PricePerGram: 0.048, Hex: "#FEDD00"},
	}
}

func orderWithInk(inkID string) domain.ProductionOrder {
	return domain.ProductionOrder{
		ID: "OP-INK", Client: "Nissan", Product: "Etiqueta",
		Quantity: 10, QuantityUnit: "millares",
		OperatorID: "OP-001", MachineID: "MA-P5",
		Inks: []domain.InkUsage{
			{InkID: inkID, Name: inkID, Type: "new", Consumption: 1000},
		},
	}
}

func newInkStore(t *testing.T, order domain.ProductionOrder, lookup pantone.LookupFunc) *Store {
	t.Helper()

	s, err := New(Options{
		Initial:    Snapshot{ProductionOrders: []domain.ProductionOrder{order}},
		InkCatalog: testInkCatalog(),
		Lookup:     lookup,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func stubLookup(result pantone.FormulaResult, err error, calls *atomic.Int32) pantone.LookupFunc {
	return func(ctx context.Context, code string) (pantone.FormulaResult, error) {
		if calls != nil {
			calls.Add(1)
		}
		return result, err
	}
}

func pantone4572C() pantone.FormulaResult {
	return pantone.FormulaResult{
		PantoneName: "PAN-4572C",
		Hex:         "#5B5A4B",
		Components: []pantone.Component{
			{Name: "Pantone Black 6 C", Percentage: 50},
			{Name: "Pantone Yellow 012 C", Percentage: 50},
		},
	}
}

func TestResolveInkFormulaExpandsComponents(t *testing.T) {
	s := newInkStore(t, orderWithInk("PAN-4572C"), stubLookup(pantone4572C(), nil, nil))

	if err := s.ResolveInkFormula(context.Background(), "OP-INK", "PAN-4572C"); err != nil {
		t.Fatalf("ResolveInkFormula returned error: %v", err)
	}

	o, _ := s.ProductionOrder("OP-INK")
	usage := o.Inks[0]
	if len(usage.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(usage.Components))
	}
	// 50% of 1000 g per component.
	if usage.Components[0].Weight != 500 || usage.Components[1].Weight != 500 {
		t.Fatalf("unexpected weights: %+v", usage.Components)
	}
	if usage.Components[0].Cost != 500*0.04 {
		t.Fatalf("unexpected component cost: %v", usage.Components[0].Cost)
	}
	if usage.Hex != "#5B5A4B" {
		t.Fatalf("expected target hex applied, got %q", usage.Hex)
	}
	// Weighted average: 0.5×0.04 + 0.5×0.048.
	if math.Abs(usage.PricePerGram-0.044) > 1e-9 {
		t.Fatalf("expected derived price per gram 0.044, got %v", usage.PricePerGram)
	}

	// The formula is cached for the next order.
	formulas := s.InkFormulas()
	if len(formulas) != 1 || formulas[0].ID != "PAN-4572C" {
		t.Fatalf("expected cached formula, got %+v", formulas)
	}
}

func TestResolveInkFormulaUsesCacheBeforeLookup(t *testing.T) {
	var calls atomic.Int32
	s, err := New(Options{
		Initial: Snapshot{
			ProductionOrders: []domain.ProductionOrder{orderWithInk("PAN-4572C")},
			InkFormulas: []domain.InkFormula{
				{
					ID: "PAN-4572C", Name: "Pantone 4572 C", TargetHex: "#5B5A4B",
					Components: []domain.InkFormulaComponent{
						{InkID: "PAN-BLK6C", Name: "Pantone Black 6 C", Percentage: 100},
					},
				},
			},
		},
		InkCatalog: testInkCatalog(),
		Lookup:     stubLookup(pantone.FormulaResult{}, fmt.Errorf("no debería llamarse"), &calls),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := s.ResolveInkFormula(context.Background(), "OP-INK", "PAN-4572C"); err != nil {
		t.Fatalf("ResolveInkFormula returned error: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected cached formula to skip the lookup, got %d calls", calls.Load())
	}

	o, _ := s.ProductionOrder("OP-INK")
	if len(o.Inks[0].Components) != 1 {
		t.Fatalf("expected components from cache, got %+v", o.Inks[0].Components)
	}
}

func TestResolveInkFormulaBaseInkOnlyRefreshesHex(t *testing.T) {
	var calls atomic.Int32
	s := newInkStore(t, orderWithInk("PAN-BLK6C"), stubLookup(pantone.FormulaResult{}, fmt.Errorf("no debería llamarse"), &calls))

	if err := s.ResolveInkFormula(context.Background(), "OP-INK", "PAN-BLK6C"); err != nil {
		t.Fatalf("ResolveInkFormula returned error: %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("base inks never hit the service, got %d calls", calls.Load())
	}

	o, _ := s.ProductionOrder("OP-INK")
	if o.Inks[0].Hex != "#2D2926" {
		t.Fatalf("expected catalog hex, got %q", o.Inks[0].Hex)
	}
	if len(o.Inks[0].Components) != 0 {
		t.Fatal("base inks have no components")
	}
}

func TestResolveInkFormulaUnknownComponentFails(t *testing.T) {
	result := pantone.FormulaResult{
		PantoneName: "PAN-9999C",
		Hex:         "#000000",
		Components: []pantone.Component{
			{Name: "Tinta Misteriosa", Percentage: 100},
		},
	}
	s := newInkStore(t, orderWithInk("PAN-9999C"), stubLookup(result, nil, nil))

	err := s.ResolveInkFormula(context.Background(), "OP-INK", "PAN-9999C")
	if err == nil {
		t.Fatal("expected error for unknown base ink")
	}

	// The usage stays untouched so the order is still costable by hand.
	o, _ := s.ProductionOrder("OP-INK")
	if len(o.Inks[0].Components) != 0 {
		t.Fatalf("expected usage untouched, got %+v", o.Inks[0].Components)
	}
}

func TestResolveInkFormulaMissingOrderOrInkIsNoOp(t *testing.T) {
	var calls atomic.Int32
	s := newInkStore(t, orderWithInk("PAN-4572C"), stubLookup(pantone4572C(), nil, &calls))

	if err := s.ResolveInkFormula(context.Background(), "OP-NOPE", "PAN-4572C"); err != nil {
		t.Fatalf("expected silent no-op for missing order, got %v", err)
	}
	if err := s.ResolveInkFormula(context.Background(), "OP-INK", "PAN-OTRA"); err != nil {
		t.Fatalf("expected silent no-op for missing ink, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no lookups, got %d", calls.Load())
	}
}

func TestStartInkFormulaFetchDeduplicates(t *testing.T) {
	block := make(chan struct{})
	var calls atomic.Int32
	lookup := func(ctx context.Context, code string) (pantone.FormulaResult, error) {
		calls.Add(1)
		<-block
		return pantone4572C(), nil
	}
	s := newInkStore(t, orderWithInk("PAN-4572C"), lookup)

	for i := 0; i < 5; i++ {
		s.StartInkFormulaFetch(context.Background(), "OP-INK", "PAN-4572C", nil)
	}
	// Give the single worker a moment to reach the lookup.
	time.Sleep(50 * time.Millisecond)
	close(block)

	deadline := time.Now().Add(2 * time.Second)
	for {
		o, _ := s.ProductionOrder("OP-INK")
		if len(o.Inks[0].Components) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for formula application")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected a single lookup for concurrent requests, got %d", calls.Load())
	}
}
