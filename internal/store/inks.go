package store

import (
	"context"
	"fmt"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/pantone"
)

// baseInk finds a catalog ink by id.
func (s *Store) baseInk(id string) (domain.Ink, bool) {
	for _, ink := range s.catalog {
		if ink.ID == id {
			return ink, true
		}
	}
	return domain.Ink{}, false
}

// StartInkFormulaFetch kicks off an asynchronous formula resolution for one
// ink usage of an order. Concurrent requests for the same order+ink pair are
// deduplicated; the result is applied defensively, only if the order and ink
// usage still exist by the time the lookup returns. Failures are reported to
// onError (which may be nil) and leave the usage's cost fields untouched.
func (s *Store) StartInkFormulaFetch(ctx context.Context, orderID, inkID string, onError func(error)) {
	key := orderID + "/" + inkID

	s.mu.Lock()
	if s.inflight[key] {
		s.mu.Unlock()
		return
	}
	s.inflight[key] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()
		if err := s.ResolveInkFormula(ctx, orderID, inkID); err != nil && onError != nil {
			onError(err)
		}
	}()
}

// ResolveInkFormula fills in the mixing components of a custom (Pantone)
// ink usage: it loads the formula from the cache or the external service,
// expands it into weighted components against the base-ink catalog and
// derives the usage's price per gram from the component mix. Base-catalog
// inks only get their hex refreshed. Already-resolved usages are a no-op.
func (s *Store) ResolveInkFormula(ctx context.Context, orderID, inkID string) error {
	s.mu.Lock()
	i := s.orderIndex(orderID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	usage, ok := findInkUsage(s.state.ProductionOrders[i], inkID)
	if !ok || len(usage.Components) > 0 {
		s.mu.Unlock()
		return nil
	}

	if base, isBase := s.baseInk(inkID); isBase {
		defer s.mu.Unlock()
		if usage.Hex == base.Hex {
			return nil
		}
		return s.applyInkUsage(orderID, inkID, func(u *domain.InkUsage) { u.Hex = base.Hex })
	}

	formula, cached := s.findFormula(inkID)
	s.mu.Unlock()

	if !cached {
		if s.lookup == nil {
			return fmt.Errorf("servicio de fórmulas no configurado")
		}
		// Network call happens outside the store lock.
		result, err := s.lookup(ctx, inkID)
		if err != nil {
			return err
		}
		formula = formulaFromResult(result, s.catalog)

		s.mu.Lock()
		if _, exists := s.findFormula(formula.ID); !exists {
			s.state.InkFormulas = append(append([]domain.InkFormula(nil), s.state.InkFormulas...), formula)
		}
		s.mu.Unlock()
	}

	components := make([]domain.InkUsageComponent, 0, len(formula.Components))
	pricePerGram := 0.0
	for _, comp := range formula.Components {
		base, ok := s.baseInk(comp.InkID)
		if !ok {
			return fmt.Errorf("la tinta base %q no se encontró en el catálogo; el costo no se puede calcular", comp.Name)
		}
		weight := comp.Percentage / 100 * usage.Consumption
		components = append(components, domain.InkUsageComponent{
			Name:       base.Name,
			Weight:     weight,
			Cost:       weight * base.PricePerGram,
			Hex:        base.Hex,
			Percentage: comp.Percentage,
		})
		pricePerGram += comp.Percentage / 100 * base.PricePerGram
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyInkUsage(orderID, inkID, func(u *domain.InkUsage) {
		u.Components = components
		u.Hex = formula.TargetHex
		if u.PricePerGram == 0 {
			u.PricePerGram = pricePerGram
		}
	})
}

// applyInkUsage re-checks existence and mutates the ink usage copy-on-write.
// Caller holds the lock. A vanished order or ink is a silent no-op: the
// lookup result is applied defensively, never forcefully.
func (s *Store) applyInkUsage(orderID, inkID string, fn func(*domain.InkUsage)) error {
	i := s.orderIndex(orderID)
	if i < 0 {
		return nil
	}
	orders := append([]domain.ProductionOrder(nil), s.state.ProductionOrders...)
	o := orders[i]
	inks := append([]domain.InkUsage(nil), o.Inks...)
	for j := range inks {
		if inks[j].InkID == inkID {
			fn(&inks[j])
			o.Inks = inks
			orders[i] = o
			s.state.ProductionOrders = orders
			return s.persist()
		}
	}
	return nil
}

func (s *Store) findFormula(id string) (domain.InkFormula, bool) {
	for _, f := range s.state.InkFormulas {
		if f.ID == id {
			return f, true
		}
	}
	return domain.InkFormula{}, false
}

func findInkUsage(o domain.ProductionOrder, inkID string) (domain.InkUsage, bool) {
	for _, u := range o.Inks {
		if u.InkID == inkID {
			return u, true
		}
	}
	return domain.InkUsage{}, false
}

// formulaFromResult maps the external service answer onto a cacheable
// formula, resolving component names to catalog ids where possible.
func formulaFromResult(r pantone.FormulaResult, catalog []domain.Ink) domain.InkFormula {
	components := make([]domain.InkFormulaComponent, 0, len(r.Components))
	for _, c := range r.Components {
		inkID := c.Name
		for _, base := range catalog {
			if base.Name == c.Name {
				inkID = base.ID
				break
			}
		}
		components = append(components, domain.InkFormulaComponent{
			InkID:      inkID,
			Name:       c.Name,
			Percentage: c.Percentage,
		})
	}
	return domain.InkFormula{
		ID:         r.PantoneName,
		Name:       r.PantoneName,
		TargetHex:  r.Hex,
		Components: components,
	}
}
