package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	tokendomain "github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	"github.com/sourcekart/sourcekart/internal/downloadtoken/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (tokendomain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tokendomain.DownloadToken{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Policy: config.StaticPolicyHolder(config.DefaultPolicy()),
		Clock:  clk,
	})
	return svc, clk
}

func TestIssueToken(t *testing.T) {
	svc, clk := newTestService(t)

	tok, err := svc.Issue(context.Background(), "Alice@Example.com", 42)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", tok.UserEmail)
	assert.False(t, tok.Used)
	assert.Equal(t, clk.Now().Add(time.Hour), tok.ExpiresAt)
	// 32 random bytes, base64url without padding.
	assert.Len(t, tok.Token, 43)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	svc, _ := newTestService(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		tok, err := svc.Issue(context.Background(), "a@b.com", 42)
		require.NoError(t, err)
		assert.False(t, seen[tok.Token])
		seen[tok.Token] = true
	}
}

func TestRedeemHappyPath(t *testing.T) {
	svc, _ := newTestService(t)

	tok, err := svc.Issue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	redeemed, err := svc.Redeem(context.Background(), tok.Token, "a@b.com")
	require.NoError(t, err)
	assert.True(t, redeemed.Used)
	assert.Equal(t, int64(42), redeemed.ProductID)
}

func TestRedeemAtMostOnce(t *testing.T) {
	svc, _ := newTestService(t)

	tok, err := svc.Issue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), tok.Token, "a@b.com")
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), tok.Token, "a@b.com")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidToken)
}

func TestRedeemWrongEmailLeavesTokenLive(t *testing.T) {
	svc, _ := newTestService(t)

	tok, err := svc.Issue(context.Background(), "alice@example.com", 42)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), tok.Token, "bob@example.com")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidToken)

	// The failed attempt must not burn the token for its owner.
	redeemed, err := svc.Redeem(context.Background(), tok.Token, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, redeemed.Used)
}

func TestRedeemExpiredToken(t *testing.T) {
	svc, clk := newTestService(t)

	tok, err := svc.Issue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	clk.Advance(time.Hour + time.Second)
	_, err = svc.Redeem(context.Background(), tok.Token, "a@b.com")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidToken)
}

func TestRedeemUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Redeem(context.Background(), "no-such-token", "a@b.com")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidToken)

	_, err = svc.Redeem(context.Background(), "", "a@b.com")
	assert.ErrorIs(t, err, tokendomain.ErrInvalidToken)
}

func TestLatestLive(t *testing.T) {
	svc, clk := newTestService(t)

	none, err := svc.LatestLive(context.Background(), "a@b.com", 42)
	require.NoError(t, err)
	assert.Nil(t, none)

	first, err := svc.Issue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	second, err := svc.Issue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	live, err := svc.LatestLive(context.Background(), "a@b.com", 42)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, second.Token, live.Token)
	assert.NotEqual(t, first.Token, live.Token)
}

func TestReissue(t *testing.T) {
	svc, clk := newTestService(t)

	first, err := svc.Reissue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)

	// A live token is handed back instead of minting another.
	again, err := svc.Reissue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)
	assert.Equal(t, first.Token, again.Token)

	// Once spent, a fresh token is minted.
	_, err = svc.Redeem(context.Background(), first.Token, "a@b.com")
	require.NoError(t, err)
	clk.Advance(time.Second)

	fresh, err := svc.Reissue(context.Background(), "a@b.com", 42)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, fresh.Token)
}
