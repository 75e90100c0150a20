package store

import (
	"fmt"
	"time"

	"github.com/venkilabels/quality-hub/internal/domain"
)

// RetentionDays is how long a soft-deleted record stays recoverable in the
// trash before it is eligible for purge.
const RetentionDays = 120

// EntityType selects which collection an archive/trash action targets.
type EntityType string

const (
	EntityOrder    EntityType = "order"
	EntityEmployee EntityType = "employee"
	EntityMachine  EntityType = "machine"
	EntityMaterial EntityType = "material"
)

// DaysUntilPurge returns how many whole days remain in the retention window
// for a record soft-deleted at deletedAt (RFC 3339), clamped at zero. A
// blank timestamp means the record is not in the trash and the full window
// is reported.
func DaysUntilPurge(deletedAt string, now time.Time) int {
	if deletedAt == "" {
		return RetentionDays
	}
	t, err := time.Parse(time.RFC3339, deletedAt)
	if err != nil {
		return 0
	}
	elapsed := int(now.Sub(t).Hours() / 24)
	remaining := RetentionDays - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Archive soft-archives a record: status flag plus timestamp, never a
// physical removal. Orders and machines take the Spanish status label.
func (s *Store) Archive(id string, entity EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Format(time.RFC3339)
	switch entity {
	case EntityOrder:
		return s.mutateOrder(id, func(o *domain.ProductionOrder) {
			o.Status = domain.StatusArchivada
			o.ArchivedAt = ts
		})
	case EntityEmployee:
		return s.mutateEmployee(id, func(e *domain.Employee) {
			e.Status = "Archived"
			e.ArchivedAt = ts
		})
	case EntityMachine:
		return s.mutateMachine(id, func(m *domain.Machine) {
			m.Status = "Archivada"
			m.ArchivedAt = ts
		})
	}
	return fmt.Errorf("tipo %s no archivable", entity)
}

// SoftDelete moves a record to the trash by stamping deletedAt.
func (s *Store) SoftDelete(id string, entity EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Format(time.RFC3339)
	switch entity {
	case EntityOrder:
		return s.mutateOrder(id, func(o *domain.ProductionOrder) { o.DeletedAt = ts })
	case EntityEmployee:
		return s.mutateEmployee(id, func(e *domain.Employee) { e.DeletedAt = ts })
	case EntityMachine:
		return s.mutateMachine(id, func(m *domain.Machine) { m.DeletedAt = ts })
	case EntityMaterial:
		return s.mutateMaterial(id, func(m *domain.Material) { m.DeletedAt = ts })
	}
	return fmt.Errorf("tipo %s desconocido", entity)
}

// Restore takes a record out of the trash.
func (s *Store) Restore(id string, entity EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch entity {
	case EntityOrder:
		return s.mutateOrder(id, func(o *domain.ProductionOrder) { o.DeletedAt = "" })
	case EntityEmployee:
		return s.mutateEmployee(id, func(e *domain.Employee) { e.DeletedAt = "" })
	case EntityMachine:
		return s.mutateMachine(id, func(m *domain.Machine) { m.DeletedAt = "" })
	case EntityMaterial:
		return s.mutateMaterial(id, func(m *domain.Material) { m.DeletedAt = "" })
	}
	return fmt.Errorf("tipo %s desconocido", entity)
}

// Purge physically removes a record. It is always an explicit, user-triggered
// action; there is no background sweeper.
func (s *Store) Purge(id string, entity EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch entity {
	case EntityOrder:
		orders := make([]domain.ProductionOrder, 0, len(s.state.ProductionOrders))
		for _, o := range s.state.ProductionOrders {
			if o.ID != id {
				orders = append(orders, o)
			}
		}
		s.state.ProductionOrders = orders
	case EntityEmployee:
		employees := make([]domain.Employee, 0, len(s.state.Employees))
		for _, e := range s.state.Employees {
			if e.ID != id {
				employees = append(employees, e)
			}
		}
		s.state.Employees = employees
	case EntityMachine:
		machines := make([]domain.Machine, 0, len(s.state.Machines))
		for _, m := range s.state.Machines {
			if m.ID != id {
				machines = append(machines, m)
			}
		}
		s.state.Machines = machines
	case EntityMaterial:
		materials := make([]domain.Material, 0, len(s.state.Materials))
		for _, m := range s.state.Materials {
			if m.ID != id {
				materials = append(materials, m)
			}
		}
		s.state.Materials = materials
	default:
		return fmt.Errorf("tipo %s desconocido", entity)
	}
	return s.persist()
}

// PurgeExpired removes every trashed record whose retention window has run
// out. Explicitly invoked, typically from the trash screen.
func (s *Store) PurgeExpired() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := func(deletedAt string) bool {
		return deletedAt != "" && DaysUntilPurge(deletedAt, now) == 0
	}

	orders := make([]domain.ProductionOrder, 0, len(s.state.ProductionOrders))
	for _, o := range s.state.ProductionOrders {
		if !expired(o.DeletedAt) {
			orders = append(orders, o)
		}
	}
	s.state.ProductionOrders = orders

	employees := make([]domain.Employee, 0, len(s.state.Employees))
	for _, e := range s.state.Employees {
		if !expired(e.DeletedAt) {
			employees = append(employees, e)
		}
	}
	s.state.Employees = employees

	machines := make([]domain.Machine, 0, len(s.state.Machines))
	for _, m := range s.state.Machines {
		if !expired(m.DeletedAt) {
			machines = append(machines, m)
		}
	}
	s.state.Machines = machines

	materials := make([]domain.Material, 0, len(s.state.Materials))
	for _, m := range s.state.Materials {
		if !expired(m.DeletedAt) {
			materials = append(materials, m)
		}
	}
	s.state.Materials = materials

	return s.persist()
}

// mutate helpers replace the matching element copy-on-write and persist.
// Callers hold the lock.

func (s *Store) mutateOrder(id string, fn func(*domain.ProductionOrder)) error {
	i := s.orderIndex(id)
	if i < 0 {
		return fmt.Errorf("orden %s: %w", id, ErrNotFound)
	}
	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	fn(&orders[i])
	s.state.ProductionOrders = orders
	return s.persist()
}

func (s *Store) mutateEmployee(id string, fn func(*domain.Employee)) error {
	for i, e := range s.state.Employees {
		if e.ID == id {
			employees := append([]domain.Employee(nil), s.state.Employees...)
			fn(&employees[i])
			s.state.Employees = employees
			return s.persist()
		}
	}
	return fmt.Errorf("empleado %s: %w", id, ErrNotFound)
}

func (s *Store) mutateMachine(id string, fn func(*domain.Machine)) error {
	for i, m := range s.state.Machines {
		if m.ID == id {
			machines := append([]domain.Machine(nil), s.state.Machines...)
			fn(&machines[i])
			s.state.Machines = machines
			return s.persist()
		}
	}
	return fmt.Errorf("máquina %s: %w", id, ErrNotFound)
}

func (s *Store) mutateMaterial(id string, fn func(*domain.Material)) error {
	for i, m := range s.state.Materials {
		if m.ID == id {
			materials := append([]domain.Material(nil), s.state.Materials...)
			fn(&materials[i])
			s.state.Materials = materials
			return s.persist()
		}
	}
	return fmt.Errorf("material %s: %w", id, ErrNotFound)
}
