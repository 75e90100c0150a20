package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venkilabels/quality-hub/internal/config"
	"github.com/venkilabels/quality-hub/internal/db"
	"github.com/venkilabels/quality-hub/internal/migrations"
	"github.com/venkilabels/quality-hub/internal/pantone"
	"github.com/venkilabels/quality-hub/internal/seed"
	"github.com/venkilabels/quality-hub/internal/store"
)

type server struct {
	auth  *authService
	store *store.Store
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	auth := newAuthService(database, cfg.SessionSecret)
	if err := auth.ensureAdminUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	var lookup pantone.LookupFunc
	if cfg.PantoneAPIURL != "" {
		lookup = pantone.NewClient(cfg.PantoneAPIURL, cfg.PantoneAPIKey).Formula
	}

	st, err := store.New(store.Options{
		Snapshots:  store.NewSQLiteSnapshots(database),
		Initial:    seed.Snapshot(),
		Rates:      seed.RateTables(),
		InkCatalog: seed.InkCatalog(),
		Lookup:     lookup,
	})
	if err != nil {
		log.Fatalf("failed to initialize store: %v", err)
	}

	srv := &server{auth: auth, store: st}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/password", s.handlePasswordChange)

	r.Route("/api", func(r chi.Router) {
		r.Get("/materials", s.handleMaterialsList)
		r.Post("/materials", s.handleMaterialsReplace)
		r.Post("/materials/{id}", s.handleMaterialUpdate)

		r.Get("/machines", s.handleMachinesList)
		r.Post("/machines", s.handleMachinesReplace)
		r.Get("/employees", s.handleEmployeesList)
		r.Post("/employees", s.handleEmployeesReplace)

		r.Get("/orders", s.handleOrdersList)
		r.Post("/orders", s.handleOrderCreate)
		r.Post("/orders/{id}", s.handleOrderUpdate)
		r.Post("/orders/{id}/status", s.handleOrderStatus)
		r.Post("/orders/{id}/events", s.handleOrderEvent)
		r.Post("/orders/{id}/target-cost", s.handleOrderTargetCost)
		r.Post("/orders/{id}/inks/{inkId}/formula", s.handleInkFormula)

		r.Get("/scrap", s.handleScrapList)
		r.Post("/scrap", s.handleScrapCreate)
		r.Get("/scrap/summary", s.handleScrapSummary)

		r.Get("/targets", s.handleTargetsGet)
		r.Put("/targets", s.handleTargetsPut)
		r.Get("/reports/compliance", s.handleComplianceReport)

		r.Post("/archive/{type}/{id}", s.handleArchive)
		r.Get("/trash", s.handleTrashList)
		r.Post("/trash/purge-expired", s.handleTrashPurgeExpired)
		r.Post("/trash/{type}/{id}", s.handleTrashDelete)
		r.Post("/trash/{type}/{id}/restore", s.handleTrashRestore)
		r.Post("/trash/{type}/{id}/purge", s.handleTrashPurge)
	})

	return r
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := currentUser(r, s.auth); !ok {
			respondError(w, http.StatusUnauthorized, "no autorizado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request, auth *authService) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return auth.verifySessionValue(cookie.Value)
}
