package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/perimetra/ztcore/pkg/model"
)

// ArchivedDecision is the database row for one retained decision. The full
// record is kept as JSON for audit replay; the flattened columns exist for
// querying.
type ArchivedDecision struct {
	ID         string `gorm:"primaryKey"`
	Timestamp  time.Time
	EntityID   string
	ResourceID string
	Operation  string
	Decision   string
	TrustScore float64
	RiskScore  float64
	RiskLevel  string
	Record     string
}

// TableName maps the model to the access_decisions table.
func (ArchivedDecision) TableName() string {
	return "access_decisions"
}

// Archive persists decisions to Postgres for long-term retention. The
// in-memory store stays authoritative for the engine; the archive is the
// retention collaborator hook.
type Archive struct {
	db *gorm.DB
}

// NewArchive creates an archive from DECISION_DATABASE_URL.
// Returns nil if DECISION_DATABASE_URL is not set (archiving disabled).
func NewArchive() (*Archive, error) {
	dbURL := os.Getenv("DECISION_DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}

	logMode := logger.Silent
	if os.Getenv("ZTCORE_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to decision archive: %w", err)
	}

	return &Archive{db: db}, nil
}

// NewArchiveWithDB creates an archive over an existing connection.
// Useful for testing with sqlmock.
func NewArchiveWithDB(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

// Save persists one decision.
func (a *Archive) Save(d *model.AccessDecision) error {
	if a == nil || a.db == nil {
		return nil
	}

	record, err := json.Marshal(d)
	if err != nil {
		return err
	}

	row := ArchivedDecision{
		ID:         d.ID,
		Timestamp:  d.Timestamp,
		EntityID:   d.EntityID,
		ResourceID: d.ResourceID,
		Operation:  d.Operation,
		Decision:   string(d.Decision),
		TrustScore: d.Trust.Score,
		RiskScore:  d.Risk.Score,
		RiskLevel:  d.Risk.Level.String(),
		Record:     string(record),
	}

	if err := a.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to archive decision: %w", err)
	}
	return nil
}
