package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/venkilabels/quality-hub/internal/domain"
	"github.com/venkilabels/quality-hub/internal/metrics"
	"github.com/venkilabels/quality-hub/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "cuerpo JSON inválido")
		return false
	}
	return true
}

// respondStoreError maps engine errors onto the API taxonomy: missing
// references are 404; everything else (unit/pricing mismatches, missing
// conversion factors, duplicate ids) is 422 with the message verbatim.
func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusUnprocessableEntity, err.Error())
}

// --- auth ---

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "error de autenticación")
		return
	}
	if !valid {
		respondError(w, http.StatusUnauthorized, "Credenciales inválidas. Intenta de nuevo.")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	email, _ := currentUser(r, s.auth)

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "la nueva contraseña es requerida")
		return
	}

	valid, err := s.auth.validateCredentials(email, req.CurrentPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "error de autenticación")
		return
	}
	if !valid {
		respondError(w, http.StatusUnauthorized, "La contraseña actual no es correcta.")
		return
	}

	if err := s.auth.updatePassword(email, req.NewPassword); err != nil {
		respondError(w, http.StatusInternalServerError, "no se pudo actualizar la contraseña")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- catalogs ---

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Materials())
}

func (s *server) handleMaterialsReplace(w http.ResponseWriter, r *http.Request) {
	var materials []domain.Material
	if !decodeJSON(w, r, &materials) {
		return
	}
	if err := s.store.SetMaterials(materials); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Materials())
}

func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var updated domain.Material
	if !decodeJSON(w, r, &updated) {
		return
	}
	updated.ID = id

	materials := s.store.Materials()
	found := false
	for i, m := range materials {
		if m.ID == id {
			materials[i] = updated
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "material "+id+": no encontrado")
		return
	}
	if err := s.store.SetMaterials(materials); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *server) handleMachinesList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Machines())
}

func (s *server) handleMachinesReplace(w http.ResponseWriter, r *http.Request) {
	var machines []domain.Machine
	if !decodeJSON(w, r, &machines) {
		return
	}
	if err := s.store.SetMachines(machines); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Machines())
}

func (s *server) handleEmployeesList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Employees())
}

func (s *server) handleEmployeesReplace(w http.ResponseWriter, r *http.Request) {
	var employees []domain.Employee
	if !decodeJSON(w, r, &employees) {
		return
	}
	if err := s.store.SetEmployees(employees); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Employees())
}

// --- production orders ---

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.ProductionOrders())
}

func (s *server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	var o domain.ProductionOrder
	if !decodeJSON(w, r, &o) {
		return
	}
	if err := s.store.AddProductionOrder(o); err != nil {
		respondStoreError(w, err)
		return
	}
	created, _ := s.store.ProductionOrder(o.ID)
	respondJSON(w, http.StatusCreated, created)
}

func (s *server) handleOrderUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Order     domain.ProductionOrder `json:"order"`
		ChangeLog string                 `json:"changeLog"`
		Actor     string                 `json:"actor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Order.ID = id

	if err := s.store.UpdateProductionOrder(req.Order, req.ChangeLog, req.Actor); err != nil {
		respondStoreError(w, err)
		return
	}
	updated, _ := s.store.ProductionOrder(id)
	respondJSON(w, http.StatusOK, updated)
}

func (s *server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status domain.ProductionStatus `json:"status"`
		Actor  string                  `json:"actor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.store.SetOrderStatus(id, req.Status, req.Actor); err != nil {
		respondStoreError(w, err)
		return
	}
	updated, _ := s.store.ProductionOrder(id)
	respondJSON(w, http.StatusOK, updated)
}

func (s *server) handleOrderEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Type         domain.ProductionEventType `json:"type"`
		OperatorID   string                     `json:"operatorId"`
		MachineID    string                     `json:"machineId"`
		Notes        string                     `json:"notes"`
		Quantity     *float64                   `json:"quantity"`
		Unit         domain.Uom                 `json:"unit"`
		ScrapEntryID string                     `json:"scrapEntryId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.store.LogProductionEvent(id, store.EventInput{
		Type:         req.Type,
		OperatorID:   req.OperatorID,
		MachineID:    req.MachineID,
		Notes:        req.Notes,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ScrapEntryID: req.ScrapEntryID,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	updated, _ := s.store.ProductionOrder(id)
	respondJSON(w, http.StatusOK, updated)
}

func (s *server) handleOrderTargetCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		TargetCost float64 `json:"targetCost"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.store.SetOrderTargetCost(id, req.TargetCost); err != nil {
		respondStoreError(w, err)
		return
	}
	updated, _ := s.store.ProductionOrder(id)
	respondJSON(w, http.StatusOK, updated)
}

func (s *server) handleInkFormula(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	inkID := chi.URLParam(r, "inkId")

	if _, ok := s.store.ProductionOrder(orderID); !ok {
		respondError(w, http.StatusNotFound, "orden "+orderID+": no encontrado")
		return
	}

	if err := s.store.ResolveInkFormula(r.Context(), orderID, inkID); err != nil {
		respondStoreError(w, err)
		return
	}
	updated, _ := s.store.ProductionOrder(orderID)
	respondJSON(w, http.StatusOK, updated)
}

// --- scrap ---

func (s *server) handleScrapList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.ScrapEntries())
}

func (s *server) handleScrapCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID      string     `json:"orderId"`
		MaterialID   string     `json:"materialId"`
		Cause        string     `json:"cause"`
		Date         string     `json:"date"`
		UnitCaptured domain.Uom `json:"unitCaptured"`
		Qty          float64    `json:"qty"`
		OperatorID   string     `json:"operatorId"`
		MachineID    string     `json:"machineId"`
		Note         string     `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := s.store.AddScrap(store.ScrapInput{
		OrderID:      req.OrderID,
		MaterialID:   req.MaterialID,
		Cause:        req.Cause,
		Date:         req.Date,
		UnitCaptured: req.UnitCaptured,
		Qty:          req.Qty,
		OperatorID:   req.OperatorID,
		MachineID:    req.MachineID,
		Note:         req.Note,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *server) handleScrapSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary := s.store.ScrapSummary(metrics.Filters{
		From:       q.Get("from"),
		To:         q.Get("to"),
		OperatorID: q.Get("operatorId"),
		MachineID:  q.Get("machineId"),
		OrderID:    q.Get("orderId"),
		Category:   domain.MaterialType(q.Get("category")),
		Cause:      q.Get("cause"),
	})
	respondJSON(w, http.StatusOK, summary)
}

// --- targets and reports ---

func (s *server) handleTargetsGet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Targets())
}

func (s *server) handleTargetsPut(w http.ResponseWriter, r *http.Request) {
	var t domain.Targets
	if !decodeJSON(w, r, &t) {
		return
	}
	if err := s.store.SetTargets(t); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.store.Targets())
}

func (s *server) handleComplianceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := metrics.ComplianceScope(q.Get("scope"))
	if scope == "" {
		scope = metrics.ScopeGlobal
	}
	report := s.store.ComplianceReport(
		scope,
		q.Get("operatorId"),
		q.Get("machineId"),
		q.Get("orderId"),
		q.Get("from"),
		q.Get("to"),
	)
	respondJSON(w, http.StatusOK, report)
}

// --- archive and trash ---

func entityTypeParam(r *http.Request) (store.EntityType, bool) {
	switch t := store.EntityType(chi.URLParam(r, "type")); t {
	case store.EntityOrder, store.EntityEmployee, store.EntityMachine, store.EntityMaterial:
		return t, true
	default:
		return "", false
	}
}

func (s *server) handleArchive(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityTypeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "tipo de entidad desconocido")
		return
	}
	if err := s.store.Archive(chi.URLParam(r, "id"), entity); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// trashItem is a uniform view over every soft-deleted record, with the days
// left in its retention window.
type trashItem struct {
	Type           store.EntityType `json:"type"`
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	DeletedAt      string           `json:"deletedAt"`
	DaysUntilPurge int              `json:"daysUntilPurge"`
}

func (s *server) handleTrashList(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	items := make([]trashItem, 0)

	for _, o := range s.store.ProductionOrders() {
		if o.DeletedAt != "" {
			items = append(items, trashItem{store.EntityOrder, o.ID, o.Product, o.DeletedAt, store.DaysUntilPurge(o.DeletedAt, now)})
		}
	}
	for _, e := range s.store.Employees() {
		if e.DeletedAt != "" {
			items = append(items, trashItem{store.EntityEmployee, e.ID, e.Name, e.DeletedAt, store.DaysUntilPurge(e.DeletedAt, now)})
		}
	}
	for _, m := range s.store.Machines() {
		if m.DeletedAt != "" {
			items = append(items, trashItem{store.EntityMachine, m.ID, m.Name, m.DeletedAt, store.DaysUntilPurge(m.DeletedAt, now)})
		}
	}
	for _, m := range s.store.Materials() {
		if m.DeletedAt != "" {
			items = append(items, trashItem{store.EntityMaterial, m.ID, m.Name, m.DeletedAt, store.DaysUntilPurge(m.DeletedAt, now)})
		}
	}

	respondJSON(w, http.StatusOK, items)
}

func (s *server) handleTrashDelete(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityTypeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "tipo de entidad desconocido")
		return
	}
	if err := s.store.SoftDelete(chi.URLParam(r, "id"), entity); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTrashRestore(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityTypeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "tipo de entidad desconocido")
		return
	}
	if err := s.store.Restore(chi.URLParam(r, "id"), entity); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTrashPurge(w http.ResponseWriter, r *http.Request) {
	entity, ok := entityTypeParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "tipo de entidad desconocido")
		return
	}
	if err := s.store.Purge(chi.URLParam(r, "id"), entity); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleTrashPurgeExpired(w http.ResponseWriter, r *http.Request) {
	if err := s.store.PurgeExpired(); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
