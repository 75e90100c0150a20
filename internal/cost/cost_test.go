package cost

import (
	"errors"
	"math"
	"testing"

	"github.com/venkilabels/quality-hub/internal/domain"
)

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func paperPerKg() domain.Material {
	return domain.Material{
		ID: "MAT-PAPER-001", Name: "Papel Couche 80g", Type: domain.MaterialPaper,
		UomBase: domain.UomKilogram,
		Pricing: domain.Pricing{Mode: domain.PerKilogram, Price: 2.5},
	}
}

func filmPerRoll() domain.Material {
	return domain.Material{
		ID: "MAT-PP-001", Name: "Polipropileno Blanco", Type: domain.MaterialLabelStock,
		UomBase: domain.UomMeter,
		Pricing: domain.Pricing{Mode: domain.PerRoll, Price: 350, LengthMetersPerRoll: domain.Float64(1000)},
	}
}

func clichePerUnit() domain.Material {
	return domain.Material{
		ID: "MAT-CLICHE-001", Name: "Cliché Estándar", Type: domain.MaterialTool,
		UomBase: domain.UomUnit,
		Pricing: domain.Pricing{Mode: domain.PerUnit, Price: 150},
	}
}

func TestUnitCostPerKilogramPricesGrams(t *testing.T) {
	got, err := UnitCost(domain.UomGram, paperPerKg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(got, 0.0025) {
		t.Fatalf("expected 0.0025 per gram, got %v", got)
	}

	// 500 g at $2.50/kg is $1.25.
	usage := domain.OrderMaterialUsage{MaterialID: "MAT-PAPER-001", Qty: 500, Unit: domain.UomGram}
	c, err := MaterialUsageCost(usage, paperPerKg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(c, 1.25) {
		t.Fatalf("expected 1.25, got %v", c)
	}
}

func TestUnitCostPerRollConvertsToMeters(t *testing.T) {
	got, err := UnitCost(domain.UomMeter, filmPerRoll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(got, 0.35) {
		t.Fatalf("expected 0.35 per meter, got %v", got)
	}

	usage := domain.OrderMaterialUsage{MaterialID: "MAT-PP-001", Qty: 200, Unit: domain.UomMeter}
	c, err := MaterialUsageCost(usage, filmPerRoll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(c, 70) {
		t.Fatalf("expected 70, got %v", c)
	}
}

func TestUnitCostPerRollWithoutFactorFails(t *testing.T) {
	m := filmPerRoll()
	m.Pricing.LengthMetersPerRoll = nil

	_, err := UnitCost(domain.UomMeter, m)
	if !errors.Is(err, ErrIncompatibleUnit) {
		t.Fatalf("expected ErrIncompatibleUnit, got %v", err)
	}

	// Labels need their own factor; meters-per-roll does not substitute.
	m = filmPerRoll()
	if _, err := UnitCost(domain.UomLabels, m); !errors.Is(err, ErrIncompatibleUnit) {
		t.Fatalf("expected ErrIncompatibleUnit for labels, got %v", err)
	}
}

func TestUnitCostIncompatibleMode(t *testing.T) {
	_, err := UnitCost(domain.UomMeter, clichePerUnit())
	if !errors.Is(err, ErrIncompatibleUnit) {
		t.Fatalf("expected ErrIncompatibleUnit, got %v", err)
	}
}

func TestRoutingCostUsesCategoryAndMachineRates(t *testing.T) {
	rates := domain.RateTables{
		LaborRates:   map[string]float64{"default": 15, "prensista_A": 20},
		MachineRates: map[string]float64{"MA-P5": 50},
	}

	op := domain.RoutingOperation{
		MachineID:        "MA-P5",
		SetupTimeH:       0.5,
		RunTimeH:         domain.Float64(1.5),
		OperatorCategory: "prensista_A",
	}
	// 2h × ($20 labor + $50 machine) = $140.
	if got := RoutingCost(op, rates); !nearlyEqual(got, 140) {
		t.Fatalf("expected 140, got %v", got)
	}

	// No category falls back to default; unknown machine bills zero.
	op = domain.RoutingOperation{MachineID: "X", SetupTimeH: 1}
	if got := RoutingCost(op, rates); !nearlyEqual(got, 15) {
		t.Fatalf("expected 15, got %v", got)
	}
}

func TestToolingAmortizationPrefersActuals(t *testing.T) {
	tools := []domain.Tooling{
		{ID: "T1", PurchaseCost: 150, AmortizationUnits: 100000, Unit: domain.ToolingLabels},
		{ID: "T2", PurchaseCost: 99, AmortizationUnits: 0, Unit: domain.ToolingLabels},
	}
	o := domain.ProductionOrder{
		LabelsPlanned: domain.Float64(10000),
		LabelsActual:  domain.Float64(8000),
	}

	// 150/100000 × 8000 = 12; the zero-base tool is skipped.
	if got := ToolingAmortizationCost(tools, o); !nearlyEqual(got, 12) {
		t.Fatalf("expected 12, got %v", got)
	}

	o.LabelsActual = nil
	if got := ToolingAmortizationCost(tools, o); !nearlyEqual(got, 15) {
		t.Fatalf("expected planned fallback 15, got %v", got)
	}
}

func TestOrderTotalCostIsDeterministicAndLenient(t *testing.T) {
	materials := []domain.Material{paperPerKg(), filmPerRoll(), clichePerUnit()}
	rates := domain.RateTables{
		LaborRates:       map[string]float64{"default": 15},
		MachineRates:     map[string]float64{"MA-P5": 50},
		OverheadPerOrder: domain.Float64(25),
		OverheadPerHour:  domain.Float64(10),
	}
	o := domain.ProductionOrder{
		ID: "OP-1",
		Materials: []domain.OrderMaterialUsage{
			{MaterialID: "MAT-PAPER-001", Qty: 500, Unit: domain.UomGram}, // 1.25
			{MaterialID: "MAT-PP-001", Qty: 200, Unit: domain.UomMeter},   // 70
			{MaterialID: "MAT-GONE", Qty: 10, Unit: domain.UomGram},       // skipped
			{MaterialID: "MAT-CLICHE-001", Qty: 5, Unit: domain.UomMeter}, // incompatible, skipped
		},
		Inks: []domain.InkUsage{
			{InkID: "PAN-485C", Consumption: 100, PricePerGram: 0.06}, // 6
		},
		Routing: []domain.RoutingOperation{
			{MachineID: "MA-P5", SetupTimeH: 1}, // 65 labor+machine, 10 overhead/h
		},
	}
	entries := []domain.ScrapEntry{
		{ID: "S1", OrderID: "OP-1", Cost: 12.5},
		{ID: "S2", OrderID: "OP-OTHER", Cost: 99},
	}

	// 1.25 + 70 + 6 + 65 + (25 + 10) + 12.5 = 189.75
	want := 189.75
	first := OrderTotalCost(o, materials, rates, entries)
	if !nearlyEqual(first, want) {
		t.Fatalf("expected %v, got %v", want, first)
	}
	for i := 0; i < 5; i++ {
		if got := OrderTotalCost(o, materials, rates, entries); got != first {
			t.Fatalf("total changed across runs: %v then %v", first, got)
		}
	}
}

func TestScrapEntryCost(t *testing.T) {
	entry := domain.ScrapEntry{UnitCaptured: domain.UomGram, Qty: 500}
	got, err := ScrapEntryCost(entry, paperPerKg())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nearlyEqual(got, 1.25) {
		t.Fatalf("expected 1.25, got %v", got)
	}

	// Zero quantity or no unit is simply free, never an error.
	if got, err := ScrapEntryCost(domain.ScrapEntry{Qty: 0, UnitCaptured: domain.UomGram}, paperPerKg()); err != nil || got != 0 {
		t.Fatalf("expected 0/nil, got %v/%v", got, err)
	}
	if got, err := ScrapEntryCost(domain.ScrapEntry{Qty: 5}, paperPerKg()); err != nil || got != 0 {
		t.Fatalf("expected 0/nil, got %v/%v", got, err)
	}

	// Incompatible units must propagate so the save flow can reject them.
	entry = domain.ScrapEntry{UnitCaptured: domain.UomMeter, Qty: 5}
	if _, err := ScrapEntryCost(entry, clichePerUnit()); !errors.Is(err, ErrIncompatibleUnit) {
		t.Fatalf("expected ErrIncompatibleUnit, got %v", err)
	}
}

func TestOrderVariance(t *testing.T) {
	o := domain.ProductionOrder{
		TargetCost: domain.Float64(200),
		ActualCost: domain.Float64(250),
	}
	v := OrderVariance(o)
	if !nearlyEqual(v.Variance, 50) {
		t.Fatalf("expected variance 50, got %v", v.Variance)
	}
	if !nearlyEqual(v.VariancePct, 25) {
		t.Fatalf("expected 25%%, got %v", v.VariancePct)
	}

	v = OrderVariance(domain.ProductionOrder{ActualCost: domain.Float64(100)})
	if !nearlyEqual(v.Variance, 100) || v.VariancePct != 0 {
		t.Fatalf("expected variance 100 with no pct, got %+v", v)
	}
}
