package storage

import (
	"fmt"
	"time"

	"github.com/iyow2233/capstone/internal/core/domain"
	"github.com/iyow2233/capstone/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements ports.SessionStore using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

var _ ports.SessionStore = (*SQLiteAdapter)(nil)

// SessionModel is one invocation of the tool.
type SessionModel struct {
	ID                 string `gorm:"primaryKey"`
	Interface          string
	Targets            string // comma separated
	Cap                int
	ScanSeconds        int
	ClientScanSeconds  int
	DeauthSeconds      int
	ClientDeauthSeconds int
	PacketCount        int
	Policy             string
	StartedAt          time.Time
	StoppedAt          *time.Time
}

// NetworkModel is a network seen by a scan.
type NetworkModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	BSSID     string `gorm:"index"`
	ESSID     string
	Channel   int
	Power     int
	Hidden    bool
	SeenAt    time.Time
}

// AttackModel is the final state of one network attack.
type AttackModel struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	BSSID     string
	ESSID     string
	Channel   int
	State     string
	Broadcast bool
	Clients   string // JSON encoded []domain.ClientRecord
	Error     string
	StartTime time.Time
	EndTime   *time.Time
}

// NewSQLiteAdapter opens the database at path, enables query tracing and
// migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("enable tracing: %w", err)
	}
	if err := db.AutoMigrate(&SessionModel{}, &NetworkModel{}, &AttackModel{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_attacks_state ON attack_models(state)")

	return &SQLiteAdapter{db: db}, nil
}

// SaveSession upserts the session row.
func (a *SQLiteAdapter) SaveSession(s *domain.AttackSession) error {
	model := sessionToModel(s)
	return a.db.Save(&model).Error
}

// SaveNetworks inserts the scan results for a session.
func (a *SQLiteAdapter) SaveNetworks(sessionID string, networks []domain.NetworkRecord) error {
	if len(networks) == 0 {
		return nil
	}
	now := time.Now()
	models := make([]NetworkModel, 0, len(networks))
	for _, n := range networks {
		models = append(models, networkToModel(sessionID, n, now))
	}
	return a.db.CreateInBatches(models, 100).Error
}

// SaveAttack inserts the attack result.
func (a *SQLiteAdapter) SaveAttack(sessionID string, attack *domain.NetworkAttack) error {
	model, err := attackToModel(sessionID, attack)
	if err != nil {
		return err
	}
	return a.db.Create(&model).Error
}

// GetSession loads a session row.
func (a *SQLiteAdapter) GetSession(id string) (*SessionModel, error) {
	var m SessionModel
	if err := a.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetNetworks returns the networks recorded for a session, in scan order.
func (a *SQLiteAdapter) GetNetworks(sessionID string) ([]domain.NetworkRecord, error) {
	var models []NetworkModel
	if err := a.db.Where("session_id = ?", sessionID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.NetworkRecord, 0, len(models))
	for _, m := range models {
		out = append(out, networkToDomain(m))
	}
	return out, nil
}

// GetAttacks returns the attacks recorded for a session, in run order.
func (a *SQLiteAdapter) GetAttacks(sessionID string) ([]*domain.NetworkAttack, error) {
	var models []AttackModel
	if err := a.db.Where("session_id = ?", sessionID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.NetworkAttack, 0, len(models))
	for _, m := range models {
		attack, err := attackToDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, attack)
	}
	return out, nil
}

// Close closes the database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
