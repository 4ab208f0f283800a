package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteapp-chat/server/internal/agent/graph/tools"
	"github.com/noteapp-chat/server/internal/agent/model"
)

func TestNewToolRunnerRejectsDuplicateNames(t *testing.T) {
	_, err := NewToolRunner(context.Background(), []tool.BaseTool{
		searchTool("a", nil),
		searchTool("b", nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.ToolSearchNotes)
}

func TestNewToolRunnerAcceptsNotesTools(t *testing.T) {
	ts := tools.NewNoteAppTools(tools.NewClient("http://localhost", 0))
	r, err := NewToolRunner(context.Background(), ts)
	require.NoError(t, err)
	assert.NotNil(t, r)
}
