package model

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Checkpoint is what survives between turns of one thread.
type Checkpoint struct {
	ThreadID            string            `json:"thread_id"`
	Messages            []*schema.Message `json:"messages"`
	FetchedContent      map[string]string `json:"fetched_content"`
	CasualExchangeCount int               `json:"casual_exchange_count"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Checkpointer persists checkpoints keyed by thread ID.
type Checkpointer interface {
	// Load returns nil and no error when the thread has no checkpoint.
	Load(ctx context.Context, threadID string) (*Checkpoint, error)

	// Save replaces the checkpoint of cp.ThreadID.
	Save(ctx context.Context, cp *Checkpoint) error

	// Clear removes the checkpoint of a thread.
	Clear(ctx context.Context, threadID string) error
}
