package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Spool_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spool/12", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":12,"remaining_weight":82.0,"filament":{"name":"Prusament PLA","material":"PLA"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	s, err := c.Spool(context.Background(), 12)
	require.NoError(t, err)
	require.NotNil(t, s.RemainingWeight)
	assert.InDelta(t, 82.0, *s.RemainingWeight, 1e-9)
	assert.Equal(t, "Prusament PLA", s.Name())
	assert.Equal(t, "PLA", s.Material())
}

func TestClient_Spool_AbsentWeight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"filament":{"name":"Mystery Roll"}}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL).Spool(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, s.RemainingWeight, "absent field must stay nil, not zero")
}

func TestClient_Spool_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Spool(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsTransient(err), "not-found is a distinct outcome, not transient")
}

func TestClient_Spool_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Spool(context.Background(), 1)
	assert.True(t, IsTransient(err))

	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.SpoolID)
}

func TestClient_Spool_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Spool(context.Background(), 1)
	assert.True(t, IsTransient(err), "timeouts classify as transient")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_Spool_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"remaining_weight": "not a number"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Spool(context.Background(), 2)
	assert.True(t, IsTransient(err), "malformed data never panics the session")
}
