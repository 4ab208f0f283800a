package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noteapp-chat/server/internal/agent/model"
	errx "github.com/noteapp-chat/server/internal/core/error"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

var errStoreClosed = errors.New("audit store not initialized")

type AuditConfig struct {
	Path        string
	InMemory    bool
	BusyTimeout time.Duration
}

// AuditStore records tool calls in SQLite.
type AuditStore struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// OpenAuditStore opens (creating when needed) the database and migrates it.
func OpenAuditStore(ctx context.Context, cfg AuditConfig) (*AuditStore, error) {
	dsn, err := auditDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errx.WrapStorage(fmt.Errorf("open sqlite: %w", err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errx.WrapStorage(fmt.Errorf("get sql db: %w", err))
	}
	// sqlite serializes writers anyway
	sqlDB.SetMaxOpenConns(1)

	s := &AuditStore{db: db, sqlDB: sqlDB}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *AuditStore) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&model.ToolCallRecord{}); err != nil {
		return errx.WrapStorage(fmt.Errorf("auto migrate: %w", err))
	}
	return nil
}

func (s *AuditStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *AuditStore) InsertToolCall(ctx context.Context, rec *model.ToolCallRecord) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	if rec == nil {
		return errors.New("tool call record is nil")
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = model.ToolCallRunning
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errx.WrapStorage(fmt.Errorf("insert tool call: %w", err))
	}
	return nil
}

func (s *AuditStore) FinishToolCall(ctx context.Context, id uint64, fin model.ToolCallFinish) error {
	if s == nil || s.db == nil {
		return errStoreClosed
	}
	if fin.FinishedAt.IsZero() {
		fin.FinishedAt = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Model(&model.ToolCallRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":        fin.Status,
		"result":        fin.Result,
		"error_message": fin.ErrorMessage,
		"finished_at":   fin.FinishedAt,
	})
	if res.Error != nil {
		return errx.WrapStorage(fmt.Errorf("finish tool call %d: %w", id, res.Error))
	}
	if res.RowsAffected == 0 {
		return errx.WrapStorage(fmt.Errorf("finish tool call %d: %w", id, gorm.ErrRecordNotFound))
	}
	return nil
}

// ListToolCalls returns matching records, newest first.
func (s *AuditStore) ListToolCalls(ctx context.Context, q model.ToolCallQuery) ([]model.ToolCallRecord, error) {
	if s == nil || s.db == nil {
		return nil, errStoreClosed
	}
	db := s.db.WithContext(ctx).Model(&model.ToolCallRecord{})
	if q.TurnID != "" {
		db = db.Where("turn_id = ?", q.TurnID)
	}
	if q.ThreadID != "" {
		db = db.Where("thread_id = ?", q.ThreadID)
	}
	if q.Tool != "" {
		db = db.Where("tool = ?", q.Tool)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var out []model.ToolCallRecord
	if err := db.Order("id DESC").Limit(normalizeLimit(q.Limit)).Find(&out).Error; err != nil {
		return nil, errx.WrapStorage(fmt.Errorf("list tool calls: %w", err))
	}
	return out, nil
}

func normalizeLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	}
	return n
}

func auditDSN(cfg AuditConfig) (string, error) {
	timeoutMS := int(cfg.BusyTimeout / time.Millisecond)
	if timeoutMS <= 0 {
		timeoutMS = 5000
	}
	if cfg.InMemory {
		return fmt.Sprintf("file::memory:?_pragma=busy_timeout(%d)", timeoutMS), nil
	}
	if cfg.Path == "" {
		return "", errors.New("audit path is required unless in memory")
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cfg.Path, timeoutMS), nil
}
