package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingintake/internal/client/gate"
	"fundingintake/internal/shared/models"
)

func TestSubmitApplication(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit-form", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var rec models.ApplicationRecord
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "4111111111111111", rec.CardNumber)
		rec.ID = 42
		rec.CreatedAt = &created
		_ = json.NewEncoder(w).Encode(rec)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", srv.Client())
	in := models.ApplicationRecord{Contact: models.Contact{FirstName: "Ada"}}
	in.CardNumber = "4111111111111111"
	out, err := c.SubmitApplication(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.True(t, out.Finalized())
	assert.Equal(t, "Ada", out.FirstName)
}

func TestSubmitApplication_ErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server message", http.StatusInternalServerError, `{"error":"db down"}`, "db down"},
		{"empty body", http.StatusBadGateway, ``, FallbackSubmitMessage},
		{"no error field", http.StatusBadRequest, `{}`, FallbackSubmitMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).SubmitApplication(context.Background(), models.ApplicationRecord{})
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestListApplications_SendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"missing bearer token"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"firstName":"Ada"},{"id":2,"firstName":"Grace"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	_, err := c.ListApplications(context.Background())
	require.Error(t, err)
	assert.Equal(t, "missing bearer token", err.Error())

	list, err := c.WithToken("tok").ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[1].ID)
}

func TestListApplications_NullIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	list, err := New(srv.URL, nil).ListApplications(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client())
	_, err := c.Authenticate(context.Background(), "r@example.com", "bad")
	assert.True(t, errors.Is(err, gate.ErrInvalidCredentials))

	sess, err := c.Authenticate(context.Background(), "r@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
}

func TestTransportErrorAndCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, srv.Client()).ListApplications(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
