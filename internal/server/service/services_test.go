package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fundingintake/internal/server/config"
	"fundingintake/internal/server/repository/sqlite"
	cryptohelper "fundingintake/internal/shared/crypto"
	"fundingintake/internal/shared/models"
	"fundingintake/internal/shared/passhash"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T, dsn string, cfg config.Config) *Services {
	t.Helper()
	key := make([]byte, cryptohelper.KeyLength)
	_, _ = rand.Read(key)
	sealer, err := cryptohelper.NewSealer(key)
	require.NoError(t, err)
	repo, err := sqlite.New(dsn, sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "intake-test"
	}
	svcs := NewServices(repo, cfg, zaptest.NewLogger(t))
	svcs.Applications.now = func() time.Time { return fixedNow }
	svcs.Reviewers.now = func() time.Time { return fixedNow }
	return svcs
}

func validApplication() map[string]any {
	return map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "555-0100",
		"address": "1 Main St", "city": "Columbus", "state": "Ohio", "zipCode": "43004",
		"fundingAmount": models.DefaultFundingAmount, "fundingPurpose": "Equipment",
		"businessType": "LLC", "yearsInBusiness": "3-5 years",
		"annualRevenue": "Under $100,000", "creditScore": "Not sure",
		"termsAccepted":  true,
		"cardholderName": "Ada Lovelace", "billingAddress": "1 Main St", "billingCity": "Columbus",
		"billingState": "Ohio", "billingZip": "43004", "cardNumber": "4111111111111111",
		"expMonth": "07", "expYear": "2026", "cvv": "123",
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestSubmit_StoresAndAssignsIdentity(t *testing.T) {
	svcs := newTestServices(t, "file:svc_submit?mode=memory&cache=shared", config.Config{})
	ctx := context.Background()

	doc := validApplication()
	doc["id"] = 999
	doc["created_at"] = "2001-01-01T00:00:00Z"

	saved, err := svcs.Applications.Submit(ctx, mustJSON(t, doc))
	require.NoError(t, err)
	assert.True(t, saved.Finalized())
	assert.NotEqual(t, int64(999), saved.ID)
	assert.NotEqual(t, 2001, saved.CreatedAt.Year())

	list, err := svcs.Applications.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, "4111111111111111", list[0].CardNumber)
}

func TestSubmit_RejectsInvalidDocuments(t *testing.T) {
	svcs := newTestServices(t, "file:svc_submit_invalid?mode=memory&cache=shared", config.Config{})
	ctx := context.Background()

	cases := map[string]func(map[string]any){
		"missing field":     func(d map[string]any) { delete(d, "email") },
		"blank field":       func(d map[string]any) { d["city"] = "   " },
		"state out of set":  func(d map[string]any) { d["state"] = "Atlantis" },
		"amount out of set": func(d map[string]any) { d["fundingAmount"] = "A lot" },
		"card too long":     func(d map[string]any) { d["cardNumber"] = "41111111111111111111" },
		"cvv too long":      func(d map[string]any) { d["cvv"] = "12345" },
		"expired year":      func(d map[string]any) { d["expYear"] = "2020" },
		"consent false":     func(d map[string]any) { d["termsAccepted"] = false },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := validApplication()
			mutate(doc)
			_, err := svcs.Applications.Submit(ctx, mustJSON(t, doc))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
			assert.NotContains(t, verr.Error(), "4111111111111111")
		})
	}

	_, err := svcs.Applications.Submit(ctx, []byte("{not json"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	list, err := svcs.Applications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReviewerLogin(t *testing.T) {
	hash, err := passhash.HashPassword("s3cret")
	require.NoError(t, err)
	svcs := newTestServices(t, "file:svc_login?mode=memory&cache=shared", config.Config{
		ReviewerEmail:        "reviewer@example.com",
		ReviewerPasswordHash: hash,
		SessionTTL:           "1h",
	})
	ctx := context.Background()
	require.True(t, svcs.Reviewers.Enabled())

	_, err = svcs.Reviewers.Login(ctx, "reviewer@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svcs.Reviewers.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	for _, variant := range []string{"Reviewer@Example.com", " reviewer@example.com ", "reviewer@example.com\n"} {
		_, err = svcs.Reviewers.Login(ctx, variant, "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%q", variant)
	}

	sess, err := svcs.Reviewers.Login(ctx, "reviewer@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, fixedNow.Add(time.Hour), sess.ExpiresAt)

	sub, err := svcs.Reviewers.ParseToken(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "reviewer@example.com", sub)

	_, err = svcs.Reviewers.ParseToken(ctx, sess.Token+"broken")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestReviewerLogin_Disabled(t *testing.T) {
	svcs := newTestServices(t, "file:svc_login_disabled?mode=memory&cache=shared", config.Config{})
	assert.False(t, svcs.Reviewers.Enabled())
	_, err := svcs.Reviewers.Login(context.Background(), "a@b.c", "x")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestParseToken_RejectsForeignTokens(t *testing.T) {
	svcs := newTestServices(t, "file:svc_parse?mode=memory&cache=shared", config.Config{})
	ctx := context.Background()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "iss": "intake-test"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svcs.Reviewers.ParseToken(ctx, s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "x",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	})
	s, err = other.SignedString([]byte("test"))
	require.NoError(t, err)
	_, err = svcs.Reviewers.ParseToken(ctx, s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "x",
		Issuer:    "intake-test",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(-time.Minute)),
	})
	s, err = expired.SignedString([]byte("test"))
	require.NoError(t, err)
	_, err = svcs.Reviewers.ParseToken(ctx, s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
