package e2e

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/sourcekart/sourcekart/internal/assets"
	"github.com/sourcekart/sourcekart/internal/auth"
	"github.com/sourcekart/sourcekart/internal/catalog"
	"github.com/sourcekart/sourcekart/internal/clock"
	"github.com/sourcekart/sourcekart/internal/config"
	"github.com/sourcekart/sourcekart/internal/download"
	"github.com/sourcekart/sourcekart/internal/downloadtoken"
	"github.com/sourcekart/sourcekart/internal/events"
	"github.com/sourcekart/sourcekart/internal/migration"
	"github.com/sourcekart/sourcekart/internal/observability"
	"github.com/sourcekart/sourcekart/internal/order"
	"github.com/sourcekart/sourcekart/internal/payment"
	"github.com/sourcekart/sourcekart/internal/purchase"
	"github.com/sourcekart/sourcekart/internal/ratelimit"
	"github.com/sourcekart/sourcekart/internal/seed"
	"github.com/sourcekart/sourcekart/internal/server"
	"github.com/sourcekart/sourcekart/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fx.App
	server  *server.Server
	db      *gorm.DB
	cfg     config.Config
	baseURL string
	httpSrv *httptest.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	setDefaultEnv()

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	var (
		srv    *server.Server
		dbConn *gorm.DB
		cfg    config.Config
	)

	app := fx.New(
		observability.Module,
		config.Module,
		db.Module,
		clock.Module,
		events.Module,
		assets.Module,
		auth.Module,
		catalog.Module,
		order.Module,
		purchase.Module,
		downloadtoken.Module,
		payment.Module,
		download.Module,
		ratelimit.Module,
		migration.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Populate(&srv, &dbConn, &cfg),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	httpSrv := httptest.NewServer(srv.Engine())

	return &testEnv{
		app:     app,
		server:  srv,
		db:      dbConn,
		cfg:     cfg,
		baseURL: httpSrv.URL,
		httpSrv: httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
}

func setDefaultEnv() {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("DATABASE_TYPE", "sqlite")
	setEnvIfEmpty("DATABASE_NAME", "file:sourcekart_e2e?mode=memory&cache=shared")
	setEnvIfEmpty("RAZORPAY_SECRET", "e2e_gateway_secret")
	setEnvIfEmpty("AUTH_JWT_SECRET", "e2e_jwt_secret")
	setEnvIfEmpty("ASSET_SIGNING_SECRET", "e2e_asset_secret")
	setEnvIfEmpty("ASSET_BASE_URL", "https://assets.sourcekart.test")
	setEnvIfEmpty("SEED_DEMO_DATA", "false")
	setEnvIfEmpty("LOG_LEVEL", "error")
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}

func resetDatabase(t *testing.T, dbConn *gorm.DB) {
	t.Helper()
	for _, table := range []string{"download_tokens", "user_purchases", "orders", "products", "admin_users"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clear %s: %v", table, err)
		}
	}
	if err := seed.EnsureDefaultAdmin(dbConn); err != nil {
		t.Fatalf("seed default admin: %v", err)
	}
}

func doJSON(t *testing.T, method, reqURL string, payload any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, reqURL, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, reqURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, raw
}

func loginAdmin(t *testing.T) map[string]string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/admin-auth", map[string]any{
		"email":    "admin@sourcekart.dev",
		"password": "admin",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login failed: %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if strings.TrimSpace(payload.Token) == "" {
		t.Fatalf("expected session token after login")
	}
	return map[string]string{"Authorization": "Bearer " + payload.Token}
}

func createProduct(t *testing.T, headers map[string]string, title string) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/api/v1/admin/products", map[string]any{
		"title": title,
		"price": 149900,
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product failed: %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode product response: %v", err)
	}
	return payload.ID
}

func gatewaySignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(os.Getenv("RAZORPAY_SECRET")))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_PurchaseLifecycle(t *testing.T) {
	resetDatabase(t, env.db)

	headers := loginAdmin(t)
	productID := createProduct(t, headers, "E2E Starter Kit")

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/api/v1/checkout", map[string]any{
		"product_id":     productID,
		"customer_email": "buyer@example.com",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout failed: %d: %s", resp.StatusCode, string(body))
	}
	var checkout struct {
		OrderRef string `json:"order_id"`
		Status   string `json:"payment_status"`
	}
	if err := json.Unmarshal(body, &checkout); err != nil {
		t.Fatalf("decode checkout response: %v", err)
	}
	if checkout.Status != "pending" {
		t.Fatalf("expected pending order, got %s", checkout.Status)
	}

	verifyReq := map[string]any{
		"order_id":            checkout.OrderRef,
		"razorpay_order_id":   "order_e2e_1",
		"razorpay_payment_id": "pay_e2e_1",
		"razorpay_signature":  gatewaySignature("order_e2e_1", "pay_e2e_1"),
	}
	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/verify-payment", verifyReq, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify payment failed: %d: %s", resp.StatusCode, string(body))
	}
	var verified struct {
		Success       bool   `json:"success"`
		DownloadToken string `json:"download_token"`
	}
	if err := json.Unmarshal(body, &verified); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if !verified.Success || verified.DownloadToken == "" {
		t.Fatalf("expected download token after verification: %s", string(body))
	}

	// Replaying the gateway callback must not create a second purchase.
	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/verify-payment", verifyReq, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify replay failed: %d: %s", resp.StatusCode, string(body))
	}
	var purchases int64
	if err := env.db.Raw(`SELECT COUNT(*) FROM user_purchases WHERE user_email = ?`, "buyer@example.com").Scan(&purchases).Error; err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if purchases != 1 {
		t.Fatalf("expected 1 purchase after replay, got %d", purchases)
	}

	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/secure-download", map[string]any{
		"token":      verified.DownloadToken,
		"user_email": "buyer@example.com",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("secure download failed: %d: %s", resp.StatusCode, string(body))
	}
	var resolved struct {
		DownloadURL string `json:"download_url"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &resolved); err != nil {
		t.Fatalf("decode download response: %v", err)
	}
	if !strings.Contains(resolved.DownloadURL, "/storage/v1/object/sign/") {
		t.Fatalf("unexpected signed url: %s", resolved.DownloadURL)
	}
	if resolved.ExpiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", resolved.ExpiresIn)
	}

	// The token is single use.
	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/secure-download", map[string]any{
		"token":      verified.DownloadToken,
		"user_email": "buyer@example.com",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on token reuse, got %d: %s", resp.StatusCode, string(body))
	}

	// Recovery hands the buyer a fresh token.
	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/api/v1/downloads/recover", map[string]any{
		"email": "buyer@example.com",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recover failed: %d: %s", resp.StatusCode, string(body))
	}
	var recovered struct {
		Purchases []struct {
			DownloadToken string `json:"download_token"`
		} `json:"purchases"`
	}
	if err := json.Unmarshal(body, &recovered); err != nil {
		t.Fatalf("decode recover response: %v", err)
	}
	if len(recovered.Purchases) != 1 {
		t.Fatalf("expected 1 recovered purchase, got %d", len(recovered.Purchases))
	}
	if recovered.Purchases[0].DownloadToken == verified.DownloadToken {
		t.Fatalf("expected a fresh token from recovery")
	}
}

func TestE2E_InvalidSignatureLeavesOrderPending(t *testing.T) {
	resetDatabase(t, env.db)

	headers := loginAdmin(t)
	productID := createProduct(t, headers, "E2E Tampered Kit")

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/api/v1/checkout", map[string]any{
		"product_id":     productID,
		"customer_email": "buyer@example.com",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout failed: %d: %s", resp.StatusCode, string(body))
	}
	var checkout struct {
		OrderRef string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &checkout); err != nil {
		t.Fatalf("decode checkout response: %v", err)
	}

	resp, body = doJSON(t, http.MethodPost, env.baseURL+"/functions/v1/verify-payment", map[string]any{
		"order_id":            checkout.OrderRef,
		"razorpay_order_id":   "order_e2e_2",
		"razorpay_payment_id": "pay_e2e_2",
		"razorpay_signature":  strings.Repeat("0", 64),
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered signature, got %d: %s", resp.StatusCode, string(body))
	}

	var status string
	if err := env.db.Raw(`SELECT payment_status FROM orders WHERE public_ref = ?`, checkout.OrderRef).Scan(&status).Error; err != nil {
		t.Fatalf("query order: %v", err)
	}
	if status != "pending" {
		t.Fatalf("expected order to stay pending, got %s", status)
	}
}
