// Package journal persists orders, fills and session lifecycle rows to
// sqlite for post-mortem accounting. Rows are append-only evidence, not
// recovery state; the core never reads them back during a session.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pairs_go/internal/domain"
)

// OrderRecord is one order intent as it left the engine.
type OrderRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index"`
	OrderID    uint64 `gorm:"index"`
	Instrument string
	Side       string
	Hedge      bool
	PriceCents int64
	VolumeLots int64
	CreatedAt  time.Time
}

// FillRecord is one acknowledged fill, entry or hedge.
type FillRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  string `gorm:"index"`
	OrderID    uint64 `gorm:"index"`
	Instrument string
	Side       string
	Hedge      bool
	PriceCents int64
	VolumeLots int64
	FeesCents  decimal.Decimal `gorm:"type:numeric"`
	CreatedAt  time.Time
}

// SessionRecord marks session lifecycle transitions (start, disconnect,
// shutdown) with the positions held at that moment.
type SessionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SessionID   string `gorm:"index"`
	Event       string
	ETFPosition int64
	FutPosition int64
	CreatedAt   time.Time
}

// Journal is the sqlite-backed store. A nil *Journal is a valid no-op
// receiver, so the core runs unchanged with persistence off.
type Journal struct {
	db        *gorm.DB
	sessionID string
}

// Open creates or opens the journal database at path and starts a new
// session.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.AutoMigrate(&OrderRecord{}, &FillRecord{}, &SessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db, sessionID: uuid.NewString()}, nil
}

// SessionID returns the identifier tagged onto every row this session.
func (j *Journal) SessionID() string {
	if j == nil {
		return ""
	}
	return j.sessionID
}

// RecordOrder journals an order intent.
func (j *Journal) RecordOrder(o *domain.WorkingOrder) error {
	if j == nil {
		return nil
	}
	return j.db.Create(&OrderRecord{
		SessionID:  j.sessionID,
		OrderID:    o.ID,
		Instrument: o.Instrument.String(),
		Side:       string(o.Side),
		Hedge:      o.Hedge,
		PriceCents: int64(o.Price),
		VolumeLots: int64(o.Volume),
	}).Error
}

// RecordFill journals an acknowledged fill.
func (j *Journal) RecordFill(o *domain.WorkingOrder, price, vol int64, fees decimal.Decimal) error {
	if j == nil {
		return nil
	}
	return j.db.Create(&FillRecord{
		SessionID:  j.sessionID,
		OrderID:    o.ID,
		Instrument: o.Instrument.String(),
		Side:       string(o.Side),
		Hedge:      o.Hedge,
		PriceCents: price,
		VolumeLots: vol,
		FeesCents:  fees,
	}).Error
}

// RecordFees attaches venue-reported fees to an order's fill rows. Fees
// arrive on the terminal status message, after the fills themselves were
// journaled.
func (j *Journal) RecordFees(orderID uint64, fees decimal.Decimal) error {
	if j == nil {
		return nil
	}
	return j.db.Model(&FillRecord{}).
		Where("session_id = ? AND order_id = ?", j.sessionID, orderID).
		Update("fees_cents", fees).Error
}

// RecordSession journals a session lifecycle transition.
func (j *Journal) RecordSession(event string, etfPos, futPos int64) error {
	if j == nil {
		return nil
	}
	return j.db.Create(&SessionRecord{
		SessionID:   j.sessionID,
		Event:       event,
		ETFPosition: etfPos,
		FutPosition: futPos,
	}).Error
}

// Fills returns this session's fills, oldest first.
func (j *Journal) Fills() ([]FillRecord, error) {
	if j == nil {
		return nil, nil
	}
	var fills []FillRecord
	err := j.db.Where("session_id = ?", j.sessionID).Order("id").Find(&fills).Error
	return fills, err
}
