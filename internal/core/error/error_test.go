package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))

	notFound := WrapRedis(redis.Nil)
	assert.Equal(t, http.StatusNotFound, StatusOf(notFound))
	assert.ErrorIs(t, notFound, redis.Nil)

	other := WrapRedis(errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(other))
	assert.Contains(t, other.Error(), RedisErrorMessage)
}

func TestWrapToolKeepsChain(t *testing.T) {
	err := WrapTool("search_noteapp", context.DeadlineExceeded)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(err))
	assert.Contains(t, err.Error(), "search_noteapp")

	var app *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &app)
	assert.Equal(t, ToolErrorMessage, app.Message)
}

func TestWrapCompletion(t *testing.T) {
	assert.Nil(t, WrapCompletion(nil))
	err := WrapCompletion(ErrEmptyCompletion)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}
