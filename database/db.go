package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"tripforge/itinerary"
	"tripforge/logger"
)

var DB *sql.DB

// ─── Models ──────────────────────────────────────────────────────────────────

// ItineraryRecord is the durable contract: the canonical itinerary plus the
// originating trip request and a creation timestamp. Save/Get round-trips it
// unchanged.
type ItineraryRecord struct {
	ID            string                       `json:"id"`
	Itinerary     itinerary.CanonicalItinerary `json:"itinerary"`
	UserSelection itinerary.TripRequest        `json:"userSelection"`
	CreatedAt     time.Time                    `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

func InitDB() {
	dsn := buildDSN()

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		logger.Get().Fatalw("failed to open database", "error", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Retry connection up to 10 times (the DB may take a moment to be ready)
	for i := 0; i < 10; i++ {
		if err = DB.Ping(); err == nil {
			break
		}
		logger.Get().Infow("waiting for database", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		logger.Get().Fatalw("failed to connect to database after retries", "error", err)
	}

	migrate()
	logger.Get().Info("database connected and migrated")
}

func buildDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASSWORD", "postgres")
	name := getEnv("DB_NAME", "tripforge")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, sslmode)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func migrate() {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS itineraries (
			id             TEXT PRIMARY KEY,
			itinerary      JSONB NOT NULL,
			user_selection JSONB NOT NULL,
			pdf_data       BYTEA,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_itineraries_created_at
			ON itineraries(created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			logger.Get().Fatalw("migration failed", "error", err, "sql", m)
		}
	}
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

// SaveItinerary fully replaces any prior record at the same key: a
// regeneration overwrites, never patches. Cached PDF bytes are cleared so the
// next export re-renders from the new itinerary.
func SaveItinerary(rec *ItineraryRecord) error {
	itJSON, err := json.Marshal(rec.Itinerary)
	if err != nil {
		return fmt.Errorf("marshal itinerary: %w", err)
	}
	selJSON, err := json.Marshal(rec.UserSelection)
	if err != nil {
		return fmt.Errorf("marshal user selection: %w", err)
	}

	_, err = DB.Exec(`
		INSERT INTO itineraries (id, itinerary, user_selection)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET itinerary = EXCLUDED.itinerary,
		    user_selection = EXCLUDED.user_selection,
		    pdf_data = NULL,
		    created_at = NOW()`,
		rec.ID, itJSON, selJSON)
	return err
}

func GetItinerary(id string) (*ItineraryRecord, error) {
	var (
		rec     ItineraryRecord
		itJSON  []byte
		selJSON []byte
	)
	err := DB.QueryRow(`
		SELECT id, itinerary, user_selection, created_at
		FROM itineraries WHERE id = $1`, id).
		Scan(&rec.ID, &itJSON, &selJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itJSON, &rec.Itinerary); err != nil {
		return nil, fmt.Errorf("unmarshal itinerary: %w", err)
	}
	if err := json.Unmarshal(selJSON, &rec.UserSelection); err != nil {
		return nil, fmt.Errorf("unmarshal user selection: %w", err)
	}
	return &rec, nil
}

// UpdateItineraryPDF stores rendered PDF bytes against an existing record.
func UpdateItineraryPDF(id string, pdfData []byte) error {
	_, err := DB.Exec(`UPDATE itineraries SET pdf_data = $1 WHERE id = $2`, pdfData, id)
	return err
}

// GetItineraryPDF returns stored PDF bytes, which may be empty when no export
// has happened yet.
func GetItineraryPDF(id string) ([]byte, error) {
	var pdf []byte
	err := DB.QueryRow(`SELECT pdf_data FROM itineraries WHERE id = $1`, id).Scan(&pdf)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
