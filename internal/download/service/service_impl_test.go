package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	assetdomain "github.com/sourcekart/sourcekart/internal/assets/domain"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	catalogrepo "github.com/sourcekart/sourcekart/internal/catalog/repository"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	downloaddomain "github.com/sourcekart/sourcekart/internal/download/domain"
	tokendomain "github.com/sourcekart/sourcekart/internal/downloadtoken/domain"
	tokenrepo "github.com/sourcekart/sourcekart/internal/downloadtoken/repository"
	tokenservice "github.com/sourcekart/sourcekart/internal/downloadtoken/service"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
	purchaserepo "github.com/sourcekart/sourcekart/internal/purchase/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeStore struct {
	fail bool
	last string
}

func (f *fakeStore) SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if f.fail {
		return "", assetdomain.ErrSigningUnavailable
	}
	f.last = objectKey
	return "https://assets.example.com/signed/" + objectKey, nil
}

type downloadEnv struct {
	svc       downloaddomain.Service
	tokens    tokendomain.Service
	purchases purchasedomain.Repository
	catalog   catalogdomain.Repository
	store     *fakeStore
	db        *gorm.DB
	node      *snowflake.Node
	clk       *clock.FakeClock
}

func newDownloadEnv(t *testing.T) *downloadEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&purchasedomain.Purchase{},
		&tokendomain.DownloadToken{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	tokens := tokenservice.New(tokenservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   tokenrepo.Provide(),
		Policy: config.StaticPolicyHolder(config.DefaultPolicy()),
		Clock:  clk,
	})
	store := &fakeStore{}
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Tokens:    tokens,
		Purchases: purchaserepo.Provide(),
		Catalog:   catalogrepo.Provide(),
		Assets:    store,
		Policy:    config.StaticPolicyHolder(config.DefaultPolicy()),
		Clock:     clk,
	})
	return &downloadEnv{
		svc:       svc,
		tokens:    tokens,
		purchases: purchaserepo.Provide(),
		catalog:   catalogrepo.Provide(),
		store:     store,
		db:        db,
		node:      node,
		clk:       clk,
	}
}

func (e *downloadEnv) seedProduct(t *testing.T, title string) *catalogdomain.Product {
	t.Helper()
	now := e.clk.Now()
	p := &catalogdomain.Product{
		ID:        e.node.Generate().Int64(),
		Title:     title,
		Slug:      strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Price:     299900,
		AssetKey:  strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".zip",
		Status:    catalogdomain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.catalog.Create(context.Background(), e.db, p))
	return p
}

func (e *downloadEnv) seedPurchase(t *testing.T, email string, productID int64) {
	t.Helper()
	now := e.clk.Now()
	inserted, err := e.purchases.InsertIfAbsent(context.Background(), e.db, &purchasedomain.Purchase{
		ID:           e.node.Generate().Int64(),
		UserEmail:    email,
		OrderID:      e.node.Generate().Int64(),
		ProductID:    productID,
		IsVerified:   true,
		PurchaseDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestResolveHappyPath(t *testing.T) {
	env := newDownloadEnv(t)
	product := env.seedProduct(t, "React Dashboard")
	env.seedPurchase(t, "alice@example.com", product.ID)

	tok, err := env.tokens.Issue(context.Background(), "alice@example.com", product.ID)
	require.NoError(t, err)

	resp, err := env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{
		Token:     tok.Token,
		UserEmail: "Alice@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://assets.example.com/signed/react-dashboard.zip", resp.DownloadURL)
	assert.Equal(t, "React Dashboard", resp.ProductName)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Both counters moved.
	p, err := env.purchases.FindByEmailAndProduct(context.Background(), env.db, "alice@example.com", product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.DownloadCount)

	stored, err := env.catalog.FindByID(context.Background(), env.db, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Downloads)
}

func TestResolveTokenSingleUse(t *testing.T) {
	env := newDownloadEnv(t)
	product := env.seedProduct(t, "Vue Kit")
	env.seedPurchase(t, "alice@example.com", product.ID)

	tok, err := env.tokens.Issue(context.Background(), "alice@example.com", product.ID)
	require.NoError(t, err)

	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	require.NoError(t, err)

	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrInvalidToken)
}

func TestResolveRejectsOtherUsersToken(t *testing.T) {
	env := newDownloadEnv(t)
	product := env.seedProduct(t, "Next Kit")
	env.seedPurchase(t, "alice@example.com", product.ID)

	tok, err := env.tokens.Issue(context.Background(), "alice@example.com", product.ID)
	require.NoError(t, err)

	// Bob stole alice's token. Same generic error as expiry, and the
	// token stays live for alice.
	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "bob@example.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrInvalidToken)

	resp, err := env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DownloadURL)
}

func TestResolveExpiredToken(t *testing.T) {
	env := newDownloadEnv(t)
	product := env.seedProduct(t, "Late Kit")
	env.seedPurchase(t, "alice@example.com", product.ID)

	tok, err := env.tokens.Issue(context.Background(), "alice@example.com", product.ID)
	require.NoError(t, err)

	env.clk.Advance(time.Hour + time.Second)
	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrInvalidToken)
}

func TestResolveMissingFields(t *testing.T) {
	env := newDownloadEnv(t)

	_, err := env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: "", UserEmail: "a@b.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrMissingFields)

	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: "x", UserEmail: " "})
	assert.ErrorIs(t, err, downloaddomain.ErrMissingFields)
}

func TestResolveAssetStoreFailureBurnsToken(t *testing.T) {
	env := newDownloadEnv(t)
	product := env.seedProduct(t, "Flaky Kit")
	env.seedPurchase(t, "alice@example.com", product.ID)

	tok, err := env.tokens.Issue(context.Background(), "alice@example.com", product.ID)
	require.NoError(t, err)

	env.store.fail = true
	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrDownloadUnavailable)

	// The token is spent. Recovery is the way back in.
	env.store.fail = false
	_, err = env.svc.Resolve(context.Background(), downloaddomain.ResolveRequest{Token: tok.Token, UserEmail: "alice@example.com"})
	assert.ErrorIs(t, err, downloaddomain.ErrInvalidToken)

	recovered, err := env.svc.Recover(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, recovered, 1)
	assert.NotEqual(t, tok.Token, recovered[0].DownloadToken)
}

func TestRecoverReturnsLiveTokenPerPurchase(t *testing.T) {
	env := newDownloadEnv(t)
	first := env.seedProduct(t, "Kit One")
	second := env.seedProduct(t, "Kit Two")
	env.seedPurchase(t, "alice@example.com", first.ID)
	env.seedPurchase(t, "alice@example.com", second.ID)

	recovered, err := env.svc.Recover(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	require.Len(t, recovered, 2)

	names := []string{recovered[0].ProductName, recovered[1].ProductName}
	assert.ElementsMatch(t, []string{"Kit One", "Kit Two"}, names)
	for _, r := range recovered {
		assert.NotEmpty(t, r.DownloadToken)
	}

	// Recovery is stable: a second call hands back the same live tokens.
	again, err := env.svc.Recover(context.Background(), "alice@example.com")
	require.NoError(t, err)
	tokens := map[string]bool{}
	for _, r := range recovered {
		tokens[r.DownloadToken] = true
	}
	for _, r := range again {
		assert.True(t, tokens[r.DownloadToken])
	}
}

func TestRecoverEmptyForUnknownEmail(t *testing.T) {
	env := newDownloadEnv(t)

	recovered, err := env.svc.Recover(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, recovered)

	_, err = env.svc.Recover(context.Background(), "  ")
	assert.ErrorIs(t, err, downloaddomain.ErrMissingFields)
}
