package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

const testKey = "test-secret-key-0123456789abcdef-xyz"

func newTestJWT(t *testing.T, opts ...Option) *JWT {
	t.Helper()

	opts = append([]Option{WithKey(testKey)}, opts...)
	j, err := New(opts...)
	require.NoError(t, err)
	return j
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New(WithKey("too-short"))
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.GetTokenType())

	claims, err := j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "insight", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyEmptyToken(t *testing.T) {
	j := newTestJWT(t)

	_, err := j.Verify(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrInvalidToken.Code))
}

func TestVerifyTamperedToken(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-123")
	require.NoError(t, err)

	_, err = j.Verify(ctx, token.GetAccessToken()+"x")
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-123", auth.WithExpiresAt(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = j.Verify(ctx, token.GetAccessToken())
	assert.True(t, errors.IsCode(err, errors.ErrTokenExpired.Code))
}

func TestRevokeWithStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	j := newTestJWT(t, WithStore(store))
	ctx := context.Background()

	token, err := j.Sign(ctx, "user-123")
	require.NoError(t, err)

	_, err = j.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)

	require.NoError(t, j.Revoke(ctx, token.GetAccessToken()))

	_, err = j.Verify(ctx, token.GetAccessToken())
	assert.True(t, errors.IsCode(err, errors.ErrTokenRevoked.Code))
}

func TestRevokeWithoutStore(t *testing.T) {
	j := newTestJWT(t)

	err := j.Revoke(context.Background(), "whatever")
	assert.True(t, errors.IsCode(err, errors.ErrNotImplemented.Code))
}
