package cmd

import (
	"bytes"
	"crypto/rand"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fundingintake/internal/client/wizard"
	"fundingintake/internal/server/config"
	"fundingintake/internal/server/httpapi"
	"fundingintake/internal/server/repository/sqlite"
	"fundingintake/internal/server/service"
	cryptohelper "fundingintake/internal/shared/crypto"
	"fundingintake/internal/shared/passhash"
)

const (
	reviewerEmail    = "reviewer@example.com"
	reviewerPassword = "s3cret"
)

func newIntakeServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	key := make([]byte, cryptohelper.KeyLength)
	_, _ = rand.Read(key)
	sealer, err := cryptohelper.NewSealer(key)
	require.NoError(t, err)
	repo, err := sqlite.New("file:"+name+"?mode=memory&cache=shared", sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	hash, err := passhash.HashPassword(reviewerPassword)
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:            "test",
		JWTIssuer:            "intake-test",
		SessionTTL:           "1h",
		ReviewerEmail:        reviewerEmail,
		ReviewerPasswordHash: hash,
	}
	logger := zaptest.NewLogger(t)
	router := httpapi.NewRouter(service.NewServices(repo, cfg, logger), logger, httpapi.Options{
		MaxRequestBytes:      1 << 20,
		RequireReviewerToken: true,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("1.0.0", "2025-08-13")
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func applicationInput() string {
	lines := []string{
		"Ada", "Lovelace", "ada@example.com", "555-0100", "1 Main St", "Columbus", "Ohio", "43004",
		"", "Equipment", "LLC", "3-5 years", "Under $100,000", "Not sure",
		"Ada Lovelace", "99 Card Ave", "Dayton", "Texas", "75001", "4111111111111111",
		"12", strconv.Itoa(time.Now().Year() + 1), "987",
		"y", "n",
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "intake 1.0.0 (2025-08-13)\n", out)
}

func TestHashPassword(t *testing.T) {
	out, err := execute(t, "hunter2\n", "hash-password")
	require.NoError(t, err)
	ok, err := passhash.VerifyPassword(strings.TrimSpace(out), "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = execute(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestApplyThenReview(t *testing.T) {
	srv := newIntakeServer(t, "cmd_apply_review")

	out, err := execute(t, applicationInput(), "apply", "--server", srv.URL, "--no-browser")
	require.NoError(t, err)
	assert.Contains(t, out, "Application Submitted!")
	assert.Contains(t, out, "Reference Number: USA-")
	assert.Contains(t, out, "https://wa.me/19783475703?text=")
	assert.NotContains(t, out[strings.Index(out, "https://wa.me/"):], "4111111111111111")

	out, err = execute(t, reviewerEmail+"\n"+reviewerPassword+"\n", "review", "--plain", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Submission #1 - ")
	assert.Contains(t, out, "Payment Information (Sensitive)")
	assert.Contains(t, out, "Credit Card Number: 4111111111111111")
	assert.Contains(t, out, "First Name: Ada")
}

func TestReview_EmptyAndRejected(t *testing.T) {
	srv := newIntakeServer(t, "cmd_review_empty")

	stdin := reviewerEmail + "\nwrong\n\n" + reviewerEmail + "\n" + reviewerPassword + "\n"
	out, err := execute(t, stdin, "review", "--plain", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid email or password")
	assert.Contains(t, out, "No submissions yet")

	out, err = execute(t, reviewerEmail+"\nwrong\nn\n", "review", "--plain", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid email or password")
	assert.NotContains(t, out, "submissions")
}

func TestApply_ServerDown(t *testing.T) {
	srv := newIntakeServer(t, "cmd_apply_down")
	url := srv.URL
	srv.Close()

	out, err := execute(t, applicationInput(), "apply", "--server", url, "--no-browser")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: "+wizard.FallbackSubmitMessage)
	assert.NotContains(t, out, url)
	assert.NotContains(t, out, "dial tcp")
	assert.Contains(t, out, "Application not submitted.")
	assert.NotContains(t, out, "https://wa.me/")
}
