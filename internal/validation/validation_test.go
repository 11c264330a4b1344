package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestValidateServices_NoChecks(t *testing.T) {
	assert.NoError(t, NewServiceValidator().ValidateServices(context.Background()))
}

func TestValidateServices_RequiredFailure(t *testing.T) {
	err := NewServiceValidator().
		Register("database", false, ok).
		Register("elasticsearch", true, failing).
		ValidateServices(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "elasticsearch")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidateServices_OptionalFailureIsTolerated(t *testing.T) {
	err := NewServiceValidator().
		Register("redis", false, failing).
		Register("elasticsearch", true, ok).
		ValidateServices(context.Background())

	assert.NoError(t, err)
}

func TestValidateServices_RunsInOrder(t *testing.T) {
	var seen []string
	record := func(name string) Check {
		return func(context.Context) error {
			seen = append(seen, name)
			return nil
		}
	}

	err := NewServiceValidator().
		Register("elasticsearch", true, record("elasticsearch")).
		Register("database", true, record("database")).
		Register("redis", true, record("redis")).
		ValidateServices(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"elasticsearch", "database", "redis"}, seen)
}

func TestValidateServices_Timeout(t *testing.T) {
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	err := NewServiceValidator().
		WithTimeout(20*time.Millisecond).
		Register("elasticsearch", true, slow).
		ValidateServices(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
