package viewstate

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
)

func TestResourceDiscardsSupersededResponse(t *testing.T) {
	var res Resource[string]

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = res.Load(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started

	data, err := res.Load(context.Background(), func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	require.Equal(t, "fresh", data)

	close(release)
	<-done

	snapshot := res.Snapshot()
	assert.Equal(t, StatusSuccess, snapshot.Status)
	assert.Equal(t, "fresh", snapshot.Data)
}

func TestResourceKeepsDataOnFailure(t *testing.T) {
	var res Resource[[]int]

	_, err := res.Load(context.Background(), func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	require.NoError(t, err)

	_, err = res.Load(context.Background(), func(context.Context) ([]int, error) {
		return nil, api.NewStatusError(http.StatusServiceUnavailable, "")
	})
	require.Error(t, err)

	snapshot := res.Snapshot()
	assert.Equal(t, StatusError, snapshot.Status)
	assert.Equal(t, []int{1, 2}, snapshot.Data)
	assert.Equal(t, "Service under maintenance.", snapshot.ErrorMessage())

	res.ClearError()
	assert.Equal(t, StatusIdle, res.Snapshot().Status)
	assert.Empty(t, res.Snapshot().ErrorMessage())
}

func TestResourceResetDetachesInFlightLoad(t *testing.T) {
	var res Resource[string]

	release := make(chan struct{})
	done := make(chan struct{})
	started := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = res.Load(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "", errors.New("boom")
		})
	}()
	<-started

	res.Reset()
	close(release)
	<-done

	snapshot := res.Snapshot()
	assert.Equal(t, StatusIdle, snapshot.Status)
	assert.NoError(t, snapshot.Err)
}

func TestErrorMessageWrapsPlainErrors(t *testing.T) {
	assert.Equal(t, api.MessageConnectivity, errorMessage(errors.New("dial tcp: refused")))
	assert.Empty(t, errorMessage(nil))
}
