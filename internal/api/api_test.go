package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rthefinder/USDG/internal/authority"
	"github.com/rthefinder/USDG/internal/domain"
	"github.com/rthefinder/USDG/internal/launchpad"
	"github.com/rthefinder/USDG/internal/notify"
	"github.com/rthefinder/USDG/internal/storage/memory"
	"github.com/rthefinder/USDG/internal/verify"
)

const (
	// Base58 32-byte addresses the create endpoint accepts. The wallets
	// are on-curve points; the PDA is a valid address off the curve.
	testCreator = "11111111111111111111111111111111"
	testMint    = "6x5SYnLroiN7WYq8NQYU9KHcH4YjpBbwpUfVu3EB7ieH"
	testWalletA = "CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3"
	testWalletB = "GcdayuLaLyrdmUu324nahyv33G5poQdLUEZ1nEytDeP"
	testPDA     = "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh"
)

type testServer struct {
	router *gin.Engine
	now    *int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := int64(1700000000)
	clock := launchpad.ClockFunc(func() int64 { return now })

	events := memory.NewEventStore()
	fan := notify.NewFanout(nil)
	fan.Add("store", notify.NewStore(events))

	launches := memory.NewLaunchStore()
	participants := memory.NewParticipantStore()
	svc := launchpad.NewService(launchpad.Config{
		Launches:     launches,
		Participants: participants,
		Liquidity:    memory.NewLiquidityStore(),
		Purchases:    memory.NewPurchaseWriter(launches, participants),
		Revoker:      authority.NewStatic(),
		Sink:         fan,
		Clock:        clock,
	})

	srv := NewServer(ServerConfig{
		Service: svc,
		Events:  events,
		Clock:   clock,
	})

	ts := &testServer{router: srv.Router(), now: &now}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func launchConfigBody() map[string]interface{} {
	return map[string]interface{}{
		"anti_snipe": map[string]interface{}{
			"max_buy_per_wallet": 1000,
			"fair_launch_delay":  60,
		},
		"anti_bundle": map[string]interface{}{
			"detect_bundles":           true,
			"max_wallet_concentration": 5,
			"one_action_per_tx":        true,
		},
		"anti_rug": map[string]interface{}{
			"fixed_supply":            true,
			"revoke_mint_authority":   true,
			"revoke_freeze_authority": true,
			"lp_lock_duration":        604800,
		},
		"distribution": map[string]interface{}{
			"initial_price":    1,
			"total_supply":     100000,
			"liquidity_amount": 50000,
		},
	}
}

// createLaunch drives the create endpoint and returns the launch id.
func (ts *testServer) createLaunch(t *testing.T) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/launches", map[string]interface{}{
		"creator":    testCreator,
		"token_mint": testMint,
		"config":     launchConfigBody(),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create launch: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		LaunchID string `json:"launch_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.LaunchID
}

// openLaunch drives a launch to TradingOpen through the HTTP surface.
func (ts *testServer) openLaunch(t *testing.T) string {
	t.Helper()

	id := ts.createLaunch(t)
	caller := map[string]interface{}{"caller": testCreator}

	if w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/revoke-authorities", caller); w.Code != http.StatusOK {
		t.Fatalf("revoke: status %d, body %s", w.Code, w.Body.String())
	}
	*ts.now += 60
	if w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/enable-trading", caller); w.Code != http.StatusOK {
		t.Fatalf("enable trading: status %d, body %s", w.Code, w.Body.String())
	}
	return id
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCreateLaunch(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createLaunch(t)

	w := ts.do(t, http.MethodGet, "/api/launches/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get launch: status %d", w.Code)
	}

	var resp struct {
		Phase string `json:"phase"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Phase != string(domain.PhaseInitialized) {
		t.Errorf("phase = %s, want INITIALIZED", resp.Phase)
	}
}

func TestCreateLaunch_RejectsBadAddress(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/launches", map[string]interface{}{
		"creator":    "not-an-address",
		"token_mint": testMint,
		"config":     launchConfigBody(),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateLaunch_Duplicate(t *testing.T) {
	ts := newTestServer(t)
	ts.createLaunch(t)

	w := ts.do(t, http.MethodPost, "/api/launches", map[string]interface{}{
		"creator":    testCreator,
		"token_mint": testMint,
		"config":     launchConfigBody(),
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestCreateLaunch_InvalidConfig(t *testing.T) {
	ts := newTestServer(t)

	cfg := launchConfigBody()
	cfg["anti_rug"].(map[string]interface{})["fixed_supply"] = false

	w := ts.do(t, http.MethodPost, "/api/launches", map[string]interface{}{
		"creator":    testCreator,
		"token_mint": testMint,
		"config":     cfg,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}
}

func TestEnableTrading_BeforeDelay(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createLaunch(t)
	caller := map[string]interface{}{"caller": testCreator}

	if w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/revoke-authorities", caller); w.Code != http.StatusOK {
		t.Fatalf("revoke: status %d", w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/enable-trading", caller)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}
}

func TestRevokeAuthorities_WrongCaller(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createLaunch(t)

	w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/revoke-authorities",
		map[string]interface{}{"caller": "SomeoneElse"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestPurchaseFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openLaunch(t)

	w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/purchase",
		map[string]interface{}{"wallet": testWalletA, "amount": 500})
	if w.Code != http.StatusOK {
		t.Fatalf("purchase: status %d, body %s", w.Code, w.Body.String())
	}

	var resp participantResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalPurchased != 500 {
		t.Errorf("total purchased = %d, want 500", resp.TotalPurchased)
	}

	// Over the per-wallet cap.
	*ts.now += 2
	w = ts.do(t, http.MethodPost, "/api/launches/"+id+"/purchase",
		map[string]interface{}{"wallet": testWalletA, "amount": 600})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", w.Code, w.Body.String())
	}

	// Purchase history is served from the event store.
	w = ts.do(t, http.MethodGet, "/api/launches/"+id+"/purchases", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("purchases: status %d", w.Code)
	}
	var purchases []domain.Event
	json.Unmarshal(w.Body.Bytes(), &purchases)
	if len(purchases) != 1 {
		t.Errorf("purchase events = %d, want 1", len(purchases))
	}
}

func TestPurchase_RejectsOffCurveWallet(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openLaunch(t)

	// Program-derived addresses decode but are not curve points.
	w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/purchase",
		map[string]interface{}{"wallet": testPDA, "amount": 100})
	if w.Code != http.StatusBadRequest {
		t.Errorf("off-curve wallet: status = %d, want 400", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/launches/"+id+"/purchase",
		map[string]interface{}{"wallet": "not-an-address", "amount": 100})
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed wallet: status = %d, want 400", w.Code)
	}

	// Nothing was admitted.
	wr := ts.do(t, http.MethodGet, "/api/launches/"+id+"/participants", nil)
	var participants []participantResponse
	json.Unmarshal(wr.Body.Bytes(), &participants)
	if len(participants) != 0 {
		t.Errorf("participants = %d, want 0", len(participants))
	}
}

func TestPurchase_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/launches/unknown/purchase",
		map[string]interface{}{"wallet": testWalletA, "amount": 100})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openLaunch(t)

	for i, wallet := range []string{testWalletA, testWalletB} {
		w := ts.do(t, http.MethodPost, "/api/launches/"+id+"/purchase",
			map[string]interface{}{"wallet": wallet, "amount": 100 * (i + 1)})
		if w.Code != http.StatusOK {
			t.Fatalf("purchase %d: status %d", i, w.Code)
		}
		*ts.now += 2
	}

	w := ts.do(t, http.MethodGet, "/api/launches/"+id+"/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}

	var resp struct {
		TotalParticipants int    `json:"total_participants"`
		TotalVolume       uint64 `json:"total_volume"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TotalParticipants != 2 {
		t.Errorf("participants = %d, want 2", resp.TotalParticipants)
	}
	if resp.TotalVolume != 300 {
		t.Errorf("volume = %d, want 300", resp.TotalVolume)
	}
}

func TestVerificationEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openLaunch(t)

	w := ts.do(t, http.MethodGet, "/api/launches/"+id+"/verification", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verification: status %d, body %s", w.Code, w.Body.String())
	}

	var report verify.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.LaunchID != id {
		t.Errorf("launch id = %s, want %s", report.LaunchID, id)
	}
	// No checker configured: authorities unverified, anti-rug degrades.
	if report.AntiRug.Status == verify.StatusPass {
		t.Error("anti-rug should not pass without on-chain verification")
	}
}

func TestEventsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := ts.openLaunch(t)

	w := ts.do(t, http.MethodGet, "/api/launches/"+id+"/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("events: status %d", w.Code)
	}

	var events []domain.Event
	json.Unmarshal(w.Body.Bytes(), &events)
	// LAUNCH_CREATED, AUTHORITIES_REVOKED, TRADING_ENABLED.
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Type != domain.EventLaunchCreated {
		t.Errorf("first event = %s, want LAUNCH_CREATED", events[0].Type)
	}
}

func TestListLaunches_InvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/launches?limit=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListLaunches(t *testing.T) {
	ts := newTestServer(t)
	ts.createLaunch(t)

	w := ts.do(t, http.MethodGet, fmt.Sprintf("/api/launches?limit=%d", 10), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}

	var launches []launchResponse
	json.Unmarshal(w.Body.Bytes(), &launches)
	if len(launches) != 1 {
		t.Errorf("launches = %d, want 1", len(launches))
	}
}
