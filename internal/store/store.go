// Package store is the application state store: it owns the entity
// collections, applies every mutation under a single-writer lock with
// copy-on-write semantics, recomputes derived order state after relevant
// changes and persists the full snapshot synchronously on every write.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venkilabels/quality-hub/internal/cost"
	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/metrics"
	"github.com/venkilabels/quality-hub/internal/pantone"
	"github.com/venkilabels/quality-hub/internal/progress"
)

// ErrNotFound reports a reference to an entity the store does not hold.
var ErrNotFound = errors.New("no encontrado")

// Options configures a Store.
type Options struct {
	Snapshots Snapshots
	// Initial is used when nothing has been persisted yet (first run).
	Initial Snapshot
	// Rates are transient per-session configuration, never persisted.
	Rates domain.RateTables
	// InkCatalog lists the base inks formulas are mixed from.
	InkCatalog []domain.Ink
	// Lookup resolves Pantone-style codes to formulas. Optional.
	Lookup pantone.LookupFunc
	// Now defaults to time.Now. Injected for tests.
	Now func() time.Time
}

// Store holds all application state. All exported methods are safe for
// concurrent use; mutations serialize on one mutex as the single writer.
type Store struct {
	mu        sync.Mutex
	snapshots Snapshots
	state     Snapshot
	rates     domain.RateTables
	catalog   []domain.Ink
	lookup    pantone.LookupFunc
	now       func() time.Time
	inflight  map[string]bool
}

// New loads (or seeds) the snapshot, runs the schema migration when the
// stored version is behind, then replays every order's event log so derived
// progress fields are never trusted verbatim from storage.
func New(opts Options) (*Store, error) {
	if opts.Snapshots == nil {
		opts.Snapshots = MemorySnapshots{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	snap, version, found, err := opts.Snapshots.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		snap = opts.Initial
	} else if version < SchemaVersion {
		snap = migrate(snap, version)
	}

	for i, o := range snap.ProductionOrders {
		snap.ProductionOrders[i] = progress.Apply(domain.NormalizeOrder(o))
	}

	s := &Store{
		snapshots: opts.Snapshots,
		state:     snap,
		rates:     opts.Rates,
		catalog:   opts.InkCatalog,
		lookup:    opts.Lookup,
		now:       opts.Now,
		inflight:  map[string]bool{},
	}
	if err := s.snapshots.Save(s.state); err != nil {
		return nil, fmt.Errorf("persist initial snapshot: %w", err)
	}
	return s, nil
}

func (s *Store) persist() error {
	return s.snapshots.Save(s.state)
}

// --- read access (copies, never internal slices) ---

func (s *Store) ProductionOrders() []domain.ProductionOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
}

func (s *Store) ProductionOrder(id string) (domain.ProductionOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.state.ProductionOrders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.ProductionOrder{}, false
}

func (s *Store) Materials() []domain.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Material(nil), s.state.Materials...)
}

func (s *Store) ScrapEntries() []domain.ScrapEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ScrapEntry(nil), s.state.ScrapEntries...)
}

func (s *Store) Machines() []domain.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Machine(nil), s.state.Machines...)
}

func (s *Store) Employees() []domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Employee(nil), s.state.Employees...)
}

func (s *Store) InventoryItems() []domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InventoryItem(nil), s.state.InventoryItems...)
}

func (s *Store) Fmeas() []domain.FmeaDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FmeaDocument(nil), s.state.Fmeas...)
}

func (s *Store) InkFormulas() []domain.InkFormula {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InkFormula(nil), s.state.InkFormulas...)
}

func (s *Store) ScrapCauses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.ScrapCauses...)
}

func (s *Store) Targets() domain.Targets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Targets
}

func (s *Store) Rates() domain.RateTables { return s.rates }

// --- wholesale setters (copy-on-write, persist on every call) ---

func (s *Store) SetMaterials(materials []domain.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Materials = append([]domain.Material(nil), materials...)
	return s.persist()
}

func (s *Store) SetMachines(machines []domain.Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Machines = append([]domain.Machine(nil), machines...)
	return s.persist()
}

func (s *Store) SetEmployees(employees []domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Employees = append([]domain.Employee(nil), employees...)
	return s.persist()
}

func (s *Store) SetInventoryItems(items []domain.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.InventoryItems = append([]domain.InventoryItem(nil), items...)
	return s.persist()
}

func (s *Store) SetFmeas(fmeas []domain.FmeaDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Fmeas = append([]domain.FmeaDocument(nil), fmeas...)
	return s.persist()
}

func (s *Store) SetScrapCauses(causes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ScrapCauses = append([]string(nil), causes...)
	return s.persist()
}

func (s *Store) SetTargets(t domain.Targets) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Targets = t
	return s.persist()
}

// --- orders ---

// AddProductionOrder registers a new order. Order ids are unique and
// immutable once created.
func (s *Store) AddProductionOrder(o domain.ProductionOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		return fmt.Errorf("orden sin id")
	}
	for _, existing := range s.state.ProductionOrders {
		if existing.ID == o.ID {
			return fmt.Errorf("orden %s ya existe", o.ID)
		}
	}

	o = progress.Apply(domain.NormalizeOrder(o))
	s.state.ProductionOrders = append(append([]domain.ProductionOrder(nil), s.state.ProductionOrders...), o)
	return s.persist()
}

// UpdateProductionOrder replaces the stored order with the same id. When
// changeLog is non-empty a Modification event is appended, attributed to
// actor (falling back to "Sistema").
func (s *Store) UpdateProductionOrder(o domain.ProductionOrder, changeLog, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(o.ID)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", o.ID, ErrNotFound)
	}

	o = progress.Apply(domain.NormalizeOrder(o))
	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	orders[i] = o
	s.state.ProductionOrders = orders

	if changeLog != "" {
		if actor == "" {
			actor = "Sistema"
		}
		machineID := o.MachineID
		if machineID == "" {
			machineID = "N/A"
		}
		s.appendEvent(i, domain.ProductionEvent{
			Type:       domain.EventModification,
			OperatorID: actor,
			MachineID:  machineID,
			Notes:      changeLog,
		})
	}
	return s.persist()
}

// EventInput is the caller-supplied part of a production event; id and
// timestamp are assigned by the store.
type EventInput struct {
	Type         domain.ProductionEventType
	OperatorID   string
	MachineID    string
	Notes        string
	Quantity     *float64
	Unit         domain.Uom
	ScrapEntryID string
}

// LogProductionEvent appends an event to the order's log and replays the
// full log to refresh derived progress. The log is append-only: events are
// never edited in place.
func (s *Store) LogProductionEvent(orderID string, in EventInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(orderID)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", orderID, ErrNotFound)
	}
	s.appendEvent(i, domain.ProductionEvent{
		Type:         in.Type,
		OperatorID:   in.OperatorID,
		MachineID:    in.MachineID,
		Notes:        in.Notes,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		ScrapEntryID: in.ScrapEntryID,
	})
	return s.persist()
}

// appendEvent stamps id/timestamp, appends and replays. Caller holds the lock.
func (s *Store) appendEvent(i int, ev domain.ProductionEvent) {
	ev.ID = "E-" + uuid.NewString()
	ev.Timestamp = s.now().UTC().Format(time.RFC3339)

	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	o := orders[i]
	o.Events = append(append([]domain.ProductionEvent(nil), o.Events...), ev)
	orders[i] = progress.Apply(o)
	s.state.ProductionOrders = orders
}

// SetOrderStatus applies an admin status change, stamps the completion date
// the first time an order completes, appends the matching transition event
// and recomputes the order's actual cost. Orders without an operator and
// machine are left untouched, as there is nobody to attribute the event to.
func (s *Store) SetOrderStatus(orderID string, status domain.ProductionStatus, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(orderID)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", orderID, ErrNotFound)
	}
	o := s.state.ProductionOrders[i]
	if o.OperatorID == "" || o.MachineID == "" {
		return nil
	}

	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	o.Status = status
	if status == domain.StatusCompletada && o.CompletionDate == "" {
		o.CompletionDate = s.now().UTC().Format(time.DateOnly)
	}
	orders[i] = o
	s.state.ProductionOrders = orders

	var eventType domain.ProductionEventType
	switch status {
	case domain.StatusEnProgreso:
		eventType = domain.EventRun
	case domain.StatusPausada:
		eventType = domain.EventPause
	case domain.StatusCompletada:
		eventType = domain.EventComplete
	}
	if eventType != "" {
		operator := actor
		if operator == "" {
			operator = o.OperatorID
		}
		s.appendEvent(i, domain.ProductionEvent{
			Type:       eventType,
			OperatorID: operator,
			MachineID:  o.MachineID,
		})
	}

	s.recomputeOrderCost(i)
	return s.persist()
}

// SetOrderTargetCost sets the budget an order is measured against.
func (s *Store) SetOrderTargetCost(orderID string, targetCost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(orderID)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", orderID, ErrNotFound)
	}
	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	orders[i].TargetCost = domain.Float64(targetCost)
	s.state.ProductionOrders = orders
	return s.persist()
}

// RecomputeOrderCost re-derives the order's actual cost from the catalog,
// rates and scrap entries.
func (s *Store) RecomputeOrderCost(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.orderIndex(orderID)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", orderID, ErrNotFound)
	}
	s.recomputeOrderCost(i)
	return s.persist()
}

func (s *Store) recomputeOrderCost(i int) {
	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	total := cost.OrderTotalCost(orders[i], s.state.Materials, s.rates, s.state.ScrapEntries)
	orders[i].ActualCost = domain.Float64(total)
	s.state.ProductionOrders = orders
}

func (s *Store) orderIndex(id string) int {
	for i, o := range s.state.ProductionOrders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// --- scrap ---

// ScrapInput is a scrap entry before cost derivation and id assignment.
type ScrapInput struct {
	OrderID      string
	MaterialID   string
	Cause        string
	Date         string
	UnitCaptured domain.Uom
	Qty          float64
	OperatorID   string
	MachineID    string
	Note         string
}

// AddScrap derives the entry's cost from the material catalog (input cost is
// never trusted), appends it and, when the entry is fully attributed to an
// order, logs the linked Scrap event. Unit incompatibilities abort the save.
func (s *Store) AddScrap(in ScrapInput) (domain.ScrapEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var material *domain.Material
	for i := range s.state.Materials {
		if s.state.Materials[i].ID == in.MaterialID {
			material = &s.state.Materials[i]
			break
		}
	}
	if material == nil {
		return domain.ScrapEntry{}, fmt.Errorf("material %s: %w", in.MaterialID, ErrNotFound)
	}

	date := in.Date
	if date == "" {
		date = s.now().UTC().Format(time.DateOnly)
	}

	entry := domain.ScrapEntry{
		ID:           "S-" + uuid.NewString(),
		OrderID:      in.OrderID,
		MaterialID:   in.MaterialID,
		Category:     material.Type,
		Cause:        in.Cause,
		Date:         date,
		UnitCaptured: in.UnitCaptured,
		Qty:          in.Qty,
		OperatorID:   in.OperatorID,
		MachineID:    in.MachineID,
		Note:         in.Note,
	}

	derived, err := cost.ScrapEntryCost(entry, *material)
	if err != nil {
		return domain.ScrapEntry{}, err
	}
	entry.Cost = derived

	s.state.ScrapEntries = append(append([]domain.ScrapEntry(nil), s.state.ScrapEntries...), entry)

	if entry.OrderID != "" && entry.OperatorID != "" && entry.MachineID != "" {
		if i := s.orderIndex(entry.OrderID); i >= 0 {
			s.appendEvent(i, domain.ProductionEvent{
				Type:         domain.EventScrap,
				OperatorID:   entry.OperatorID,
				MachineID:    entry.MachineID,
				Quantity:     domain.Float64(entry.Qty),
				Unit:         entry.UnitCaptured,
				Notes:        "Causa: " + entry.Cause,
				ScrapEntryID: entry.ID,
			})
		}
	}

	if err := s.persist(); err != nil {
		return domain.ScrapEntry{}, err
	}
	return entry, nil
}

// ScrapSummary aggregates current scrap entries with the given filters.
func (s *Store) ScrapSummary(f metrics.Filters) metrics.Aggregate {
	return metrics.AggregateScrap(s.ScrapEntries(), f)
}

// ComplianceReport runs the compliance engine over current state. The date
// of "today" is taken from the store clock.
func (s *Store) ComplianceReport(scope metrics.ComplianceScope, operatorID, machineID, orderID, from, to string) metrics.ComplianceReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.BuildComplianceReport(metrics.ComplianceParams{
		Targets:          s.state.Targets,
		Scope:            scope,
		Entries:          s.state.ScrapEntries,
		ProductionOrders: s.state.ProductionOrders,
		OperatorID:       operatorID,
		MachineID:        machineID,
		OrderID:          orderID,
		From:             from,
		To:               to,
		Today:            s.now().UTC().Format(time.DateOnly),
	})
}
