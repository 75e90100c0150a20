// Package domain contains the entity types shared by the costing,
// metrics and progress engines and by the application store.
package domain

// Uom is a unit of measure used for material quantities and pricing.
type Uom string

const (
	UomGram     Uom = "g"
	UomKilogram Uom = "kg"
	UomMeter    Uom = "m"
	UomUnit     Uom = "unit"
	UomLabels   Uom = "labels"
	UomHour     Uom = "h"
	UomKWh      Uom = "kWh"
)

// PricingMode describes how a material's catalog price is denominated.
type PricingMode string

const (
	PerGram     PricingMode = "per_g"
	PerKilogram PricingMode = "per_kg"
	PerMeter    PricingMode = "per_m"
	PerUnit     PricingMode = "per_unit"
	PerRoll     PricingMode = "per_roll"
	PerHour     PricingMode = "per_h"
	PerKWh      PricingMode = "per_kWh"
)

// MaterialType categorizes catalog materials and scrap entries.
type MaterialType string

const (
	MaterialInk        MaterialType = "ink"
	MaterialPaper      MaterialType = "paper"
	MaterialAdhesive   MaterialType = "adhesive"
	MaterialLiner      MaterialType = "liner"
	MaterialVarnish    MaterialType = "varnish"
	MaterialLabelStock MaterialType = "labelStock"
	MaterialSolvent    MaterialType = "solvent"
	MaterialMRO        MaterialType = "mro"
	MaterialTool       MaterialType = "tool"
	MaterialService    MaterialType = "service"
	MaterialMisc       MaterialType = "misc"
)

// Pricing is a material's price descriptor. The roll conversion factors are
// only meaningful for PerRoll mode; a nil factor means "not configured" and
// makes the corresponding unit conversion a hard error, never a silent zero.
type Pricing struct {
	Mode               PricingMode `json:"mode"`
	Price              float64     `json:"price"`
	LengthMetersPerRoll *float64   `json:"lengthMetersPerRoll,omitempty"`
	LabelsPerRoll      *float64    `json:"labelsPerRoll,omitempty"`
	WeightKgPerRoll    *float64    `json:"weightKgPerRoll,omitempty"`
}

// Material is a catalog entry used to cost usages and scrap.
type Material struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          MaterialType `json:"type"`
	UomBase       Uom          `json:"uomBase"`
	Pricing       Pricing      `json:"pricing"`
	BasisWeightGM2 *float64    `json:"basisWeight_g_m2,omitempty"`
	WidthMM       *float64     `json:"width_mm,omitempty"`
	SupplierID    string       `json:"supplierId,omitempty"`
	Status        string       `json:"status"`
	ArchivedAt    string       `json:"archivedAt,omitempty"`
	DeletedAt     string       `json:"deletedAt,omitempty"`
}

// OrderMaterialUsage is a planned or actual material consumption on an order.
type OrderMaterialUsage struct {
	MaterialID string  `json:"materialId"`
	Qty        float64 `json:"qty"`
	Unit       Uom     `json:"unit"`
	Note       string  `json:"note,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// ProductionStatus is the order state machine. Statuses keep the shop-floor
// Spanish labels used across the business.
type ProductionStatus string

const (
	StatusNueva      ProductionStatus = "Nueva"
	StatusPendiente  ProductionStatus = "Pendiente"
	StatusEnProgreso ProductionStatus = "En Progreso"
	StatusPausada    ProductionStatus = "Pausada"
	StatusCompletada ProductionStatus = "Completada"
	StatusCancelada  ProductionStatus = "Cancelada"
	StatusArchivada  ProductionStatus = "Archivada"
)

// Ink is a base-catalog ink with a direct price per gram.
type Ink struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PricePerGram float64 `json:"pricePerGram"`
	Hex          string  `json:"hex"`
}

// InkUsageComponent is one base ink inside a mixed (Pantone) usage, with its
// derived weight and cost.
type InkUsageComponent struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Cost       float64 `json:"cost"`
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// InkUsage is an ink consumption line on an order. PricePerGram may be a
// direct catalog price or a weighted average derived from formula components.
type InkUsage struct {
	InkID        string              `json:"inkId"`
	Name         string              `json:"name"`
	Hex          string              `json:"hex,omitempty"`
	Type         string              `json:"type"`
	Consumption  float64             `json:"consumption"`
	Leftover     float64             `json:"leftover"`
	PricePerGram float64             `json:"pricePerGram"`
	Components   []InkUsageComponent `json:"components,omitempty"`
}

// RoutingOperation is one setup+run step on a machine.
type RoutingOperation struct {
	ID               string   `json:"id"`
	MachineID        string   `json:"machineId"`
	SetupTimeH       float64  `json:"setupTime_h"`
	RunTimeH         *float64 `json:"runTime_h,omitempty"`
	RunSpeedMPerH    *float64 `json:"runSpeed_m_per_h,omitempty"`
	OperatorCategory string   `json:"operatorCategory,omitempty"`
	ScrapPlannedPct  *float64 `json:"scrapPlanned_pct,omitempty"`
}

// ToolingUnit denominates a tooling amortization base.
type ToolingUnit string

const (
	ToolingLabels ToolingUnit = "labels"
	ToolingMeters ToolingUnit = "m"
)

// Tooling is a die/plate amortized over a number of labels or meters.
type Tooling struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	PurchaseCost      float64     `json:"purchaseCost"`
	AmortizationUnits float64     `json:"amortizationUnits"`
	Unit              ToolingUnit `json:"unit"`
}

// ProductionEventType identifies an entry of an order's append-only log.
type ProductionEventType string

const (
	EventSetup          ProductionEventType = "Inicio de Setup"
	EventRun            ProductionEventType = "Inicio de Corrida"
	EventPause          ProductionEventType = "Pausa"
	EventResume         ProductionEventType = "Reanudación"
	EventGoodProduction ProductionEventType = "Producción Buena"
	EventScrap          ProductionEventType = "Registro de Scrap"
	EventComplete       ProductionEventType = "Orden Completada"
	EventModification   ProductionEventType = "Modificación de Orden"
)

// ProductionEvent is immutable once appended. Quantity and Unit are only set
// for GoodProduction and Scrap events.
type ProductionEvent struct {
	ID           string              `json:"id"`
	Timestamp    string              `json:"timestamp"`
	Type         ProductionEventType `json:"type"`
	OperatorID   string              `json:"operatorId"`
	MachineID    string              `json:"machineId"`
	Notes        string              `json:"notes,omitempty"`
	Quantity     *float64            `json:"quantity,omitempty"`
	Unit         Uom                 `json:"unit,omitempty"`
	ScrapEntryID string              `json:"scrapEntryId,omitempty"`
}

// GoodQty breaks produced quantity down by captured unit.
type GoodQty struct {
	G      *float64 `json:"g,omitempty"`
	M      *float64 `json:"m,omitempty"`
	Labels *float64 `json:"labels,omitempty"`
	Unit   *float64 `json:"unit,omitempty"`
}

// ProductionOrder is a tracked production job. QuantityProduced,
// LinearMetersProduced and ProgressPercentage are always derived by replaying
// Events; they are never authoritative on their own.
type ProductionOrder struct {
	ID          string           `json:"id"`
	Client      string           `json:"client"`
	Product     string           `json:"product"`
	ProductName string           `json:"productName,omitempty"`
	OperatorID  string           `json:"operatorId,omitempty"`
	MachineID   string           `json:"machineId,omitempty"`
	Status      ProductionStatus `json:"status"`

	Quantity       float64 `json:"quantity"`
	QuantityUnit   string  `json:"quantityUnit"`
	CompletionDate string  `json:"completionDate,omitempty"`

	Materials []OrderMaterialUsage `json:"materials"`
	Inks      []InkUsage           `json:"inks"`
	Routing   []RoutingOperation   `json:"routing,omitempty"`
	Tooling   []Tooling            `json:"tooling,omitempty"`

	LabelsPerMeter *float64 `json:"labelsPerMeter,omitempty"`
	LabelsPlanned  *float64 `json:"labelsPlanned,omitempty"`
	LabelsActual   *float64 `json:"labelsActual,omitempty"`
	MetersPlanned  *float64 `json:"metersPlanned,omitempty"`
	MetersActual   *float64 `json:"metersActual,omitempty"`
	GoodQty        *GoodQty `json:"goodQty,omitempty"`

	TargetCost *float64 `json:"targetCost,omitempty"`
	ActualCost *float64 `json:"actualCost,omitempty"`

	QuantityProduced     float64           `json:"quantityProduced"`
	LinearMetersProduced float64           `json:"linearMetersProduced"`
	ProgressPercentage   float64           `json:"progressPercentage"`
	Events               []ProductionEvent `json:"events"`

	ArchivedAt string `json:"archivedAt,omitempty"`
	DeletedAt  string `json:"deletedAt,omitempty"`
}

// ScrapEntry records wasted material. Cost is derived at creation from the
// material catalog and is treated as a cached value, never hand-entered.
type ScrapEntry struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"orderId,omitempty"`
	MaterialID   string       `json:"materialId"`
	Category     MaterialType `json:"category"`
	Cause        string       `json:"cause,omitempty"`
	Date         string       `json:"date"`
	UnitCaptured Uom          `json:"unitCaptured"`
	Qty          float64      `json:"qty"`
	OperatorID   string       `json:"operatorId,omitempty"`
	MachineID    string       `json:"machineId,omitempty"`
	Cost         float64      `json:"cost"`
	Note         string       `json:"note,omitempty"`
}

// TargetLevel is one scrap target: maximum acceptable percentages by
// quantity and by cost. A nil field means "no target at this level".
type TargetLevel struct {
	QtyPct  *float64 `json:"qtyPct,omitempty"`
	CostPct *float64 `json:"costPct,omitempty"`
}

// Targets is the layered target configuration. Resolution never blends
// levels: the first defined match wins, in the order
// operator > machine > materialType > cause > global.
type Targets struct {
	Global         TargetLevel                  `json:"global"`
	ByShift        map[string]TargetLevel       `json:"byShift,omitempty"`
	ByOperator     map[string]TargetLevel       `json:"byOperator,omitempty"`
	ByMachine      map[string]TargetLevel       `json:"byMachine,omitempty"`
	ByMaterialType map[MaterialType]TargetLevel `json:"byMaterialType,omitempty"`
	ByCause        map[string]TargetLevel       `json:"byCause,omitempty"`
}

// RateTables holds labor, machine and overhead rates. Deliberately not
// persisted across sessions: rates are transient configuration, not history.
type RateTables struct {
	LaborRates       map[string]float64 `json:"laborRates"`
	MachineRates     map[string]float64 `json:"machineRates"`
	EnergyRatePerKWh *float64           `json:"energyRatePerKWh,omitempty"`
	OverheadPerOrder *float64           `json:"overheadPerOrder,omitempty"`
	OverheadPerHour  *float64           `json:"overheadPerHour,omitempty"`
}

// InventoryItem is a warehouse stock line.
type InventoryItem struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	ProductName string  `json:"productName"`
	Category    string  `json:"category"`
	OpID        string  `json:"opId,omitempty"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Location    string  `json:"location"`
	CostPerUnit float64 `json:"costPerUnit"`
	MinStock    float64 `json:"minStock"`
	Supplier    string  `json:"supplier,omitempty"`
}

// FmeaRow is one failure mode line. RPN = Severity × Occurrence × Detection.
type FmeaRow struct {
	ID                   int    `json:"id"`
	ProcessStep          string `json:"processStep"`
	PotentialFailureMode string `json:"potentialFailureMode"`
	PotentialEffect      string `json:"potentialEffect"`
	Severity             int    `json:"severity"`
	PotentialCause       string `json:"potentialCause"`
	Occurrence           int    `json:"occurrence"`
	CurrentControls      string `json:"currentControls"`
	Detection            int    `json:"detection"`
	RPN                  int    `json:"rpn"`
	RecommendedAction    string `json:"recommendedAction"`
}

// FmeaDocument is a quality FMEA study.
type FmeaDocument struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Scope string    `json:"scope"`
	Team  []string  `json:"team"`
	Rows  []FmeaRow `json:"rows"`
}

// Machine is a press or converting machine.
type Machine struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Type                  string  `json:"type"`
	Status                string  `json:"status"`
	MaxWidth              float64 `json:"maxWidth"`
	MaxSpeed              float64 `json:"maxSpeed"`
	ColorStations         int     `json:"colorStations"`
	LastMaintenance       string  `json:"lastMaintenance,omitempty"`
	NextMaintenance       string  `json:"nextMaintenance,omitempty"`
	TotalHoursAvailable   float64 `json:"totalHoursAvailable"`
	TotalHoursOperational float64 `json:"totalHoursOperational"`
	ArchivedAt            string  `json:"archivedAt,omitempty"`
	DeletedAt             string  `json:"deletedAt,omitempty"`
}

// Employee is a shop-floor operator or staff member.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	HireDate   string `json:"hireDate,omitempty"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	ArchivedAt string `json:"archivedAt,omitempty"`
	DeletedAt  string `json:"deletedAt,omitempty"`
}

// InkFormulaComponent is one base ink of a mixing formula.
type InkFormulaComponent struct {
	InkID      string  `json:"inkId"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// InkFormula is a cached mixing formula for a custom (Pantone) color.
type InkFormula struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	TargetHex  string                `json:"targetHex"`
	Components []InkFormulaComponent `json:"components"`
}

// Float64 returns a pointer to v. Convenience for optional numeric fields.
func Float64(v float64) *float64 { return &v }
