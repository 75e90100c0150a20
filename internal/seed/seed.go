// Package seed provides the first-run dataset: the base ink catalog, the
// transient rate tables and the initial snapshot used when nothing has been
// persisted yet.
package seed

import (
	"time"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/store"
)

// InkCatalog lists the base inks custom formulas are mixed from, with their
// standing price per gram.
func InkCatalog() []domain.Ink {
	return []domain.Ink{
		{ID: "PAN-186C", Name: "Pantone 186 C", PricePerGram: 0.05, Hex: "#C8102E"},
		{ID: "PAN-BLK6C", Name: "Pantone Black 6 C", PricePerGram: 0.04, Hex: "#2D2926"},
		{ID: "PAN-CG8C", Name: "Pantone Cool Gray 8 C", PricePerGram: 0.045, Hex: "#838486"},
		{ID: "PAN-286C", Name: "Pantone 286 C", PricePerGram: 0.055, Hex: "#003DA5"},
		{ID: "PAN-485C", Name: "Pantone 485 C", PricePerGram: 0.06, Hex: "#DA291C"},
		{ID: "PAN-347C", Name: "Pantone 347 C", PricePerGram: 0.052, Hex: "#009A44"},
		{ID: "PAN-YLW012C", Name: "Pantone Yellow 012 C", PricePerGram: 0.048, Hex: "#FEDD00"},
		{ID: "PAN-TRANSWHT", Name: "Pantone Transparent White", PricePerGram: 0.03, Hex: "#FFFFFF"},
		{ID: "PAN-ORG021C", Name: "Pantone Orange 021 C", PricePerGram: 0.058, Hex: "#F76900"},
		{ID: "PAN-REFBLUC", Name: "Pantone Reflex Blue C", PricePerGram: 0.056, Hex: "#001489"},
		{ID: "PAN-PROCBLUE", Name: "Pantone Process Blue C", PricePerGram: 0.054, Hex: "#0085CA"},
		{ID: "PAN-WARMRED", Name: "Pantone Warm Red C", PricePerGram: 0.061, Hex: "#F9423A"},
	}
}

// RateTables returns the session rate configuration. Rates are transient by
// design: they reflect today's cost structure, not a historical record.
func RateTables() domain.RateTables {
	return domain.RateTables{
		LaborRates:       map[string]float64{"default": 15, "prensista_A": 20, "ayudante": 12},
		MachineRates:     map[string]float64{"MA-P5": 50, "G-ECS340": 65, "HP-I6900": 80},
		OverheadPerOrder: domain.Float64(25),
		OverheadPerHour:  domain.Float64(10),
	}
}

// Snapshot builds the initial dataset for a fresh installation, including
// the scrap-event backfill that links pre-existing scrap entries into their
// orders' event logs.
func Snapshot() store.Snapshot {
	snap := store.Snapshot{
		InventoryItems:   inventoryItems(),
		ScrapEntries:     scrapEntries(),
		ProductionOrders: productionOrders(),
		ScrapCauses:      scrapCauses(),
		Machines:         machines(),
		Fmeas:            fmeas(),
		Employees:        employees(),
		InkFormulas:      inkFormulas(),
		Materials:        materials(),
		Targets:          targets(),
	}
	backfillScrapEvents(&snap)
	return snap
}

// backfillScrapEvents appends a Scrap event for every seeded scrap entry
// fully attributed to an order whose log does not yet reference it, so the
// event log and the scrap ledger agree from the first boot.
func backfillScrapEvents(snap *store.Snapshot) {
	for i, o := range snap.ProductionOrders {
		for _, s := range snap.ScrapEntries {
			if s.OrderID != o.ID || s.OperatorID == "" || s.MachineID == "" {
				continue
			}
			if hasScrapEvent(o.Events, s.ID) {
				continue
			}
			ts, err := time.Parse(time.DateOnly, s.Date)
			if err != nil {
				ts = time.Now()
			}
			o.Events = append(o.Events, domain.ProductionEvent{
				ID:           "E-SCRAP-" + s.ID,
				Timestamp:    ts.UTC().Format(time.RFC3339),
				Type:         domain.EventScrap,
				OperatorID:   s.OperatorID,
				MachineID:    s.MachineID,
				Quantity:     domain.Float64(s.Qty),
				Unit:         s.UnitCaptured,
				Notes:        "Causa: " + s.Cause,
				ScrapEntryID: s.ID,
			})
		}
		snap.ProductionOrders[i] = o
	}
}

func hasScrapEvent(events []domain.ProductionEvent, scrapEntryID string) bool {
	for _, e := range events {
		if e.ScrapEntryID == scrapEntryID {
			return true
		}
	}
	return false
}

func scrapCauses() []string {
	return []string{
		"Tinta Incorrecta",
		"Registro Mal",
		"Adhesivo",
		"Corte",
		"Falta de Material",
		"Error de Maquinaria",
	}
}

func materials() []domain.Material {
	return []domain.Material{
		{
			ID: "MAT-PAPER-001", Name: "Papel Couche 80g", Type: domain.MaterialPaper,
			UomBase: domain.UomKilogram,
			Pricing: domain.Pricing{Mode: domain.PerKilogram, Price: 2.5},
			BasisWeightGM2: domain.Float64(80), WidthMM: domain.Float64(330),
			Status: "Active",
		},
		{
			ID: "MAT-PP-001", Name: "Polipropileno Blanco 60mic", Type: domain.MaterialLabelStock,
			UomBase: domain.UomMeter,
			Pricing: domain.Pricing{Mode: domain.PerRoll, Price: 350, LengthMetersPerRoll: domain.Float64(1000)},
			WidthMM: domain.Float64(340),
			Status:  "Active",
		},
		{
			ID: "MAT-INK-485C", Name: "Tinta Pantone 485C", Type: domain.MaterialInk,
			UomBase: domain.UomGram,
			Pricing: domain.Pricing{Mode: domain.PerGram, Price: 0.06},
			Status:  "Active",
		},
		{
			ID: "MAT-CLICHE-001", Name: "Cliché Estándar", Type: domain.MaterialTool,
			UomBase: domain.UomUnit,
			Pricing: domain.Pricing{Mode: domain.PerUnit, Price: 150},
			Status:  "Active",
		},
	}
}

func machines() []domain.Machine {
	return []domain.Machine{
		{
			ID: "MA-P5", Name: "Mark Andy P5", Type: "Flexo", Status: "Operativa",
			MaxWidth: 330, MaxSpeed: 150, ColorStations: 8,
			LastMaintenance: "2023-10-01", NextMaintenance: "2024-04-01",
			TotalHoursAvailable: 160, TotalHoursOperational: 120,
		},
		{
			ID: "G-ECS340", Name: "Gallus ECS 340", Type: "Flexo", Status: "Operativa",
			MaxWidth: 340, MaxSpeed: 165, ColorStations: 10,
			LastMaintenance: "2023-09-15", NextMaintenance: "2024-03-15",
			TotalHoursAvailable: 160, TotalHoursOperational: 135,
		},
		{
			ID: "HP-I6900", Name: "HP Indigo 6900", Type: "Digital", Status: "En Mantenimiento",
			MaxWidth: 340, MaxSpeed: 40, ColorStations: 7,
			LastMaintenance: "2023-10-25", NextMaintenance: "2023-11-25",
			TotalHoursAvailable: 160, TotalHoursOperational: 60,
		},
	}
}

func employees() []domain.Employee {
	return []domain.Employee{
		{ID: "ADM-001", Name: "Admin Calidad", Position: "Administrador de Calidad", Role: "Administrador de Calidad", Email: "admin.calidad@venki.com", HireDate: "2019-01-01", Status: "Active"},
		{ID: "ALM-001", Name: "Juan Almacenista", Position: "Jefe de Almacén", Role: "Almacén", Email: "almacen@venki.com", HireDate: "2020-05-15", Status: "Active"},
		{ID: "OP-001", Name: "Carlos Prensista", Position: "Operador de Prensa", Role: "Operador", Email: "carlos.p@venki.com", HireDate: "2021-03-10", Status: "Active"},
		{ID: "INV-001", Name: "Usuario Invitado", Position: "Invitado", Role: "Lector (Ventas/Planeación)", Email: "invitado@venki.com", HireDate: "2024-01-01", Status: "Active"},
	}
}

func targets() domain.Targets {
	return domain.Targets{
		Global: domain.TargetLevel{QtyPct: domain.Float64(2.5), CostPct: domain.Float64(3.0)},
		ByOperator: map[string]domain.TargetLevel{
			"OP-001": {QtyPct: domain.Float64(2.0), CostPct: domain.Float64(2.5)},
		},
		ByMachine: map[string]domain.TargetLevel{
			"MA-P5": {QtyPct: domain.Float64(3.0), CostPct: domain.Float64(3.5)},
		},
		ByMaterialType: map[domain.MaterialType]domain.TargetLevel{
			domain.MaterialInk:   {QtyPct: domain.Float64(5.0), CostPct: domain.Float64(5.0)},
			domain.MaterialPaper: {QtyPct: domain.Float64(1.5), CostPct: domain.Float64(2.0)},
		},
		ByCause: map[string]domain.TargetLevel{
			"Tinta Incorrecta": {QtyPct: domain.Float64(0.5), CostPct: domain.Float64(1.0)},
		},
	}
}

func scrapEntries() []domain.ScrapEntry {
	return []domain.ScrapEntry{
		{ID: "S001", OrderID: "OP-NISSAN-001", MaterialID: "MAT-INK-485C", Category: domain.MaterialInk, Cause: "Tinta Incorrecta", Date: "2023-10-26", UnitCaptured: domain.UomGram, Qty: 250, OperatorID: "OP-001", MachineID: "G-ECS340", Cost: 15},
		{ID: "S002", OrderID: "OP-BOSCH-015", MaterialID: "MAT-PAPER-001", Category: domain.MaterialPaper, Cause: "Registro Mal", Date: "2023-10-26", UnitCaptured: domain.UomMeter, Qty: 50, OperatorID: "OP-001", MachineID: "G-ECS340", Cost: 60},
		{ID: "S003", OrderID: "OP-NISSAN-001", MaterialID: "MAT-PP-001", Category: domain.MaterialLabelStock, Cause: "Registro Mal", Date: "2023-10-30", UnitCaptured: domain.UomLabels, Qty: 8000, OperatorID: "ADM-001", MachineID: "MA-P5", Cost: 100},
	}
}

func productionOrders() []domain.ProductionOrder {
	return []domain.ProductionOrder{
		{
			ID: "OP-WIP-001", Client: "Ford", Product: "Etiqueta Puerta Ford", ProductName: "Etiqueta Puerta Ford",
			Quantity: 20, QuantityUnit: "rollos",
			Inks: []domain.InkUsage{
				{InkID: "PAN-BLK6C", Name: "Pantone Black 6 C", Type: "new", Consumption: 500, PricePerGram: 0.04},
			},
			MachineID: "MA-P5", OperatorID: "OP-001",
			Status:     domain.StatusEnProgreso,
			TargetCost: domain.Float64(100),
			Materials:  []domain.OrderMaterialUsage{},
			Events:     []domain.ProductionEvent{},
		},
		{
			ID: "OP-NISSAN-001", Client: "Nissan", Product: "Etiqueta Puerta Nissan 1", ProductName: "Etiqueta Puerta Nissan 1",
			Quantity: 50, QuantityUnit: "millares",
			Inks: []domain.InkUsage{
				{InkID: "PAN-485C", Name: "Pantone 485 C", Hex: "#DA291C", Type: "new", Consumption: 1500, Leftover: 100, PricePerGram: 0.06},
				{InkID: "PAN-BLK6C", Name: "Pantone Black 6 C", Hex: "#2D2926", Type: "new", Consumption: 800, Leftover: 50, PricePerGram: 0.04},
			},
			MachineID: "G-ECS340", OperatorID: "OP-001",
			Status:         domain.StatusCompletada,
			CompletionDate: "2023-10-30",
			TargetCost:     domain.Float64(250),
			Materials:      []domain.OrderMaterialUsage{},
			Events:         []domain.ProductionEvent{},
		},
		{
			ID: "order-1", Client: "Cliente A", Product: "Pedido Cliente A", ProductName: "Pedido Cliente A",
			Quantity: 10000, QuantityUnit: "unidades",
			LabelsPlanned: domain.Float64(10000), MetersPlanned: domain.Float64(5000), LabelsPerMeter: domain.Float64(2),
			MachineID: "MA-P5", OperatorID: "OP-001",
			Status:    domain.StatusPendiente,
			Inks:      []domain.InkUsage{},
			Materials: []domain.OrderMaterialUsage{},
			Events:    []domain.ProductionEvent{},
		},
	}
}

func inventoryItems() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ID: "P001", SKU: "NISSAN-ETQ-001", ProductName: "Etiqueta Puerta Nissan 1", Category: "Producto Terminado", OpID: "OP-NISSAN-001", Quantity: 50, Unit: "millares", Location: "A1-R2", CostPerUnit: 12.5, MinStock: 25},
		{ID: "MP001", SKU: "TINTA-ROJA-01", ProductName: "Tinta Roja Pantone 485C", Category: "Materia Prima", Quantity: 5.5, Unit: "kg", Location: "T1-R1", CostPerUnit: 60, MinStock: 2, Supplier: "Sun Chemical"},
		{ID: "PP001", SKU: "WIP-ETQ-FORD", ProductName: "Etiqueta Puerta Ford (impresa sin suajar)", Category: "Producto en Proceso", OpID: "OP-WIP-001", Quantity: 10, Unit: "rollos", Location: "WIP-AREA-1", CostPerUnit: 75, MinStock: 0},
	}
}

func inkFormulas() []domain.InkFormula {
	return []domain.InkFormula{
		{
			ID: "PAN-4572C", Name: "Pantone 4572 C", TargetHex: "#5B5A4B",
			Components: []domain.InkFormulaComponent{
				{InkID: "PAN-BLK6C", Name: "Pantone Black 6 C", Percentage: 50.0},
				{InkID: "PAN-YLW012C", Name: "Pantone Yellow 012 C", Percentage: 46.9},
				{InkID: "PAN-TRANSWHT", Name: "Pantone Transparent White", Percentage: 3.1},
			},
		},
	}
}

func fmeas() []domain.FmeaDocument {
	return []domain.FmeaDocument{
		{
			ID: "PFMEA-001", Name: "PFMEA - Proceso de Impresión Flexográfica",
			Scope: "Desde la preparación de tinta hasta el producto final en la máquina Mark Andy P5.",
			Team:  []string{"Admin Calidad"},
			Rows: []domain.FmeaRow{
				{ID: 1, ProcessStep: "Preparación de Tinta", PotentialFailureMode: "Tinta Incorrecta", PotentialEffect: "Color fuera de especificación, scrap masivo", Severity: 8, PotentialCause: "Error del operador al mezclar", Occurrence: 3, CurrentControls: "Doble chequeo de fórmula", Detection: 6, RPN: 144, RecommendedAction: "Implementar sistema de código de barras para verificar componentes."},
				{ID: 2, ProcessStep: "Montaje de Placa", PotentialFailureMode: "Registro Mal", PotentialEffect: "Imagen borrosa, scrap", Severity: 7, PotentialCause: "Placa mal montada en cilindro", Occurrence: 4, CurrentControls: "Inspección visual inicial", Detection: 5, RPN: 140, RecommendedAction: "Usar sistema de montaje con cámaras."},
			},
		},
	}
}
