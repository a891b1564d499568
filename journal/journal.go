// Package journal persists received messages and reception anomalies in
// sqlite, tracking which alerts the operator has acknowledged.
package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultKeep is how many messages survive Prune.
const DefaultKeep = 500

// Models
type Entry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Message    string     `json:"message"`
	ReceivedAt time.Time  `gorm:"index" json:"received_at"`
	Read       bool       `gorm:"index" json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

// Anomaly is a reception that produced no usable message: an empty
// completion or an out-of-sequence frame.
type Anomaly struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	Kind string    `gorm:"index" json:"kind"`
	Code uint32    `json:"code"`
	At   time.Time `gorm:"index" json:"at"`
}

const (
	AnomalyEmpty         = "empty"
	AnomalyOutOfSequence = "out-of-sequence"
	AnomalyTimeout       = "timeout"
)

type Stats struct {
	Received     int64 `json:"received"`
	Unread       int64 `json:"unread"`
	Unrecognized int64 `json:"unrecognized"`
}

type Journal struct {
	db *gorm.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	// Migrate
	if err := db.AutoMigrate(&Entry{}, &Anomaly{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add records a completed message as unread. An empty message is recorded
// as an anomaly instead and a nil entry is returned.
func (j *Journal) Add(message string, at time.Time) (*Entry, error) {
	if message == "" {
		return nil, j.AddUnrecognized(AnomalyEmpty, 0, at)
	}
	e := &Entry{Message: message, ReceivedAt: at}
	if err := j.db.Create(e).Error; err != nil {
		return nil, fmt.Errorf("journal add: %w", err)
	}
	return e, nil
}

func (j *Journal) AddUnrecognized(kind string, code uint32, at time.Time) error {
	if err := j.db.Create(&Anomaly{Kind: kind, Code: code, At: at}).Error; err != nil {
		return fmt.Errorf("journal add anomaly: %w", err)
	}
	return nil
}

// MarkAllRead acknowledges every unread message. The receiver has a single
// alert, so stopping it acknowledges everything pending.
func (j *Journal) MarkAllRead(at time.Time) (int64, error) {
	res := j.db.Model(&Entry{}).Where("read = ?", false).
		Updates(map[string]any{"read": true, "read_at": at})
	if res.Error != nil {
		return 0, fmt.Errorf("journal mark read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var ErrNotFound = errors.New("journal entry not found")

// MarkRead acknowledges one message.
func (j *Journal) MarkRead(id uint, at time.Time) error {
	res := j.db.Model(&Entry{}).Where("id = ? AND read = ?", id, false).
		Updates(map[string]any{"read": true, "read_at": at})
	if res.Error != nil {
		return fmt.Errorf("journal mark read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		j.db.Model(&Entry{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// Recent returns up to limit messages, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	if err := j.db.Order("received_at desc, id desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	return entries, nil
}

// Unread returns pending messages, oldest first.
func (j *Journal) Unread() ([]Entry, error) {
	var entries []Entry
	if err := j.db.Where("read = ?", false).Order("received_at, id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("journal unread: %w", err)
	}
	return entries, nil
}

func (j *Journal) Stats() (Stats, error) {
	var s Stats
	if err := j.db.Model(&Entry{}).Count(&s.Received).Error; err != nil {
		return s, fmt.Errorf("journal stats: %w", err)
	}
	if err := j.db.Model(&Entry{}).Where("read = ?", false).Count(&s.Unread).Error; err != nil {
		return s, fmt.Errorf("journal stats: %w", err)
	}
	if err := j.db.Model(&Anomaly{}).Count(&s.Unrecognized).Error; err != nil {
		return s, fmt.Errorf("journal stats: %w", err)
	}
	return s, nil
}

// Prune deletes all but the newest keep messages.
func (j *Journal) Prune(keep int) (int64, error) {
	if keep <= 0 {
		keep = DefaultKeep
	}
	newest := j.db.Model(&Entry{}).Select("id").Order("received_at desc, id desc").Limit(keep)
	res := j.db.Where("id NOT IN (?)", newest).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("journal prune: %w", res.Error)
	}
	return res.RowsAffected, nil
}
