package model

import (
	"context"
	"time"
)

// Tool call statuses stored in the audit table.
const (
	ToolCallRunning = "running"
	ToolCallSuccess = "success"
	ToolCallFailed  = "failed"
)

// ToolCallRecord is one audited call to the notes backend.
type ToolCallRecord struct {
	ID           uint64    `gorm:"primaryKey"`
	TurnID       string    `gorm:"size:64;index"`
	ThreadID     string    `gorm:"size:128;index"`
	Tool         string    `gorm:"size:64;not null;index"`
	ArgsJSON     string    `gorm:"type:text"`
	Result       string    `gorm:"type:text"`
	Status       string    `gorm:"size:16;not null;index"`
	ErrorMessage string    `gorm:"type:text"`
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   time.Time
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
}

// ToolCallFinish carries the final fields of a running record.
type ToolCallFinish struct {
	Status       string
	Result       string
	ErrorMessage string
	FinishedAt   time.Time
}

// ToolCallQuery filters ListToolCalls. Zero fields match everything.
type ToolCallQuery struct {
	TurnID   string
	ThreadID string
	Tool     string
	Status   string
	Limit    int
}

// AuditSink persists tool call records. Implementations must be safe for
// concurrent use.
type AuditSink interface {
	InsertToolCall(ctx context.Context, rec *ToolCallRecord) error
	FinishToolCall(ctx context.Context, id uint64, fin ToolCallFinish) error
}
