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
	assert.NoError(t, WrapRedis(nil))

	err := WrapRedis(redis.Nil)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.True(t, errors.Is(err, redis.Nil))

	err = WrapRedis(errors.New("connection refused"))
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, KindStorage, KindOf(err))
}

func TestWrapGeneration(t *testing.T) {
	timeout := WrapGeneration(fmt.Errorf("recv: %w", context.DeadlineExceeded))
	assert.Equal(t, KindGenerationFailure, KindOf(timeout))
	assert.Equal(t, TimeoutErrorMessage, UserMessage(timeout))

	failed := WrapGeneration(errors.New("503 from backend"))
	assert.Equal(t, GenerationErrorMessage, UserMessage(failed))
	assert.NotContains(t, UserMessage(failed), "503")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please enter a question.", UserMessage(Rejected("Please enter a question.")))
	assert.Equal(t, SystemErrorMessage, UserMessage(errors.New("boom")))
	assert.Equal(t, SystemErrorMessage, UserMessage(WrapRetrieval(errors.New("index down"))))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindRetrievalUnavailable, KindOf(fmt.Errorf("retrieve: %w", WrapRetrieval(errors.New("x")))))
	assert.Equal(t, KindInputRejected, KindOf(Rejected("nope")))
}
