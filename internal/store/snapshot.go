package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/venkilabels/quality-hub/internal/domain"
)

// SchemaVersion is the current shape of the persisted snapshot. Bump it
// together with a new case in migrate.
const SchemaVersion = 5

const snapshotKey = "venki-quality-hub-data"

// Snapshot is the persisted slice of application state: every business
// collection plus the targets configuration. Rate tables are deliberately
// excluded; they are supplied fresh each run.
type Snapshot struct {
	InventoryItems   []domain.InventoryItem   `json:"inventoryItems"`
	ScrapEntries     []domain.ScrapEntry      `json:"scrapEntries"`
	ProductionOrders []domain.ProductionOrder `json:"productionOrders"`
	ScrapCauses      []string                 `json:"scrapCauses"`
	Machines         []domain.Machine         `json:"machines"`
	Fmeas            []domain.FmeaDocument    `json:"fmeas"`
	Employees        []domain.Employee        `json:"employees"`
	InkFormulas      []domain.InkFormula      `json:"inkFormulas"`
	Materials        []domain.Material        `json:"materials"`
	Targets          domain.Targets           `json:"targets"`
}

// Snapshots is the local key-value persistence boundary. Save replaces the
// stored snapshot wholesale; there is no partial-write concept.
type Snapshots interface {
	// Load returns the stored snapshot and its schema version, or found=false
	// when nothing has been persisted yet.
	Load() (snap Snapshot, version int, found bool, err error)
	Save(Snapshot) error
}

// SQLiteSnapshots stores the snapshot as a single JSON row in SQLite.
type SQLiteSnapshots struct {
	db *sql.DB
}

// NewSQLiteSnapshots wraps an opened database. The snapshots table is
// created by the goose migrations.
func NewSQLiteSnapshots(db *sql.DB) *SQLiteSnapshots {
	return &SQLiteSnapshots{db: db}
}

func (s *SQLiteSnapshots) Load() (Snapshot, int, bool, error) {
	var (
		version int
		data    string
	)
	err := s.db.QueryRow(`SELECT version, data FROM snapshots WHERE key = ?`, snapshotKey).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, 0, false, nil
	}
	if err != nil {
		return Snapshot{}, 0, false, fmt.Errorf("query snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return Snapshot{}, 0, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, version, true, nil
}

func (s *SQLiteSnapshots) Save(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (key, version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, snapshotKey, SchemaVersion, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// MemorySnapshots is the fallback adapter for contexts without usable
// storage: loads find nothing and writes are discarded.
type MemorySnapshots struct{}

func (MemorySnapshots) Load() (Snapshot, int, bool, error) { return Snapshot{}, 0, false, nil }

func (MemorySnapshots) Save(Snapshot) error { return nil }

// migrate upgrades a stored snapshot to the current schema version. Derived
// progress fields are zeroed rather than trusted; the store replays every
// event log right after migration anyway.
func migrate(snap Snapshot, version int) Snapshot {
	if version < 5 {
		for i := range snap.ProductionOrders {
			o := &snap.ProductionOrders[i]
			if o.Events == nil {
				o.Events = []domain.ProductionEvent{}
			}
			if o.ArchivedAt != "" && o.Status != domain.StatusArchivada {
				o.Status = domain.StatusArchivada
			}
			o.ProgressPercentage = 0
			o.LinearMetersProduced = 0
		}
	}
	return snap
}
