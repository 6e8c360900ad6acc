package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
)

func newTestServer(t *testing.T) *FiberServer {
	t.Helper()
	os.Setenv("BETLAND_STORE", "memory")
	t.Cleanup(func() { os.Unsetenv("BETLAND_STORE") })

	srv := New()
	srv.RegisterFiberRoutes()
	t.Cleanup(func() { srv.Shutdown() })
	return srv
}

func doJSON(t *testing.T, srv *FiberServer, method, path, account string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("could not marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("could not create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if account != "" {
		req.Header.Set("X-Account-Id", account)
	}

	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("could not perform request: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("could not read response body: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("could not unmarshal response %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, "GET", "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}

	game, ok := body["game"].(map[string]interface{})
	if !ok {
		t.Fatalf("health response missing game section: %v", body)
	}
	if game["status"] != "running" {
		t.Errorf("game status = %v, want running", game["status"])
	}
}

func TestAPIRequiresAccountHeader(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, srv, "GET", "/api/v1/account/balance", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without X-Account-Id = %v, want 401", resp.Status)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, "GET", "/api/v1/account/balance", "p1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}
	if body["balance"].(float64) != 100000 {
		t.Errorf("balance = %v, want initial 100000", body["balance"])
	}
	if body["account_id"] != "p1" {
		t.Errorf("account_id = %v, want p1", body["account_id"])
	}
}

func TestParityBetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("places a bet", func(t *testing.T) {
		resp, body := doJSON(t, srv, "POST", "/api/v1/parity/bet", "p1",
			map[string]interface{}{"choice": "odd", "stake": 500})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want 200 (body %v)", resp.Status, body)
		}
		if body["success"] != true {
			t.Fatalf("success = %v, want true", body["success"])
		}
		if body["balance"].(float64) != 99500 {
			t.Errorf("balance = %v, want 99500", body["balance"])
		}
		if id, _ := body["wager_id"].(string); id == "" {
			t.Error("no wager id returned")
		}
	})

	t.Run("rejects a bad choice", func(t *testing.T) {
		resp, _ := doJSON(t, srv, "POST", "/api/v1/parity/bet", "p1",
			map[string]interface{}{"choice": "red", "stake": 500})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want 400", resp.Status)
		}
	})
}

func TestParityStateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, srv, "GET", "/api/v1/parity/state", "p1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}
	left := body["seconds_left"].(float64)
	if left < 1 || left > 30 {
		t.Errorf("seconds_left = %v, want within [1, 30]", left)
	}
}

func TestRouletteEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("rejects below table minimum", func(t *testing.T) {
		resp, _ := doJSON(t, srv, "POST", "/api/v1/roulette/spin", "p1",
			map[string]interface{}{"stake": 999})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want 400", resp.Status)
		}
	})

	t.Run("spins and settles", func(t *testing.T) {
		resp, body := doJSON(t, srv, "POST", "/api/v1/roulette/spin", "p1",
			map[string]interface{}{"stake": 1000})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want 200 (body %v)", resp.Status, body)
		}
		if body["success"] != true {
			t.Errorf("success = %v, want true", body["success"])
		}
		if slot, _ := body["slot"].(string); slot == "" {
			t.Error("no slot in response")
		}
	})
}

func TestSportsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("lists fixtures", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/sports/matches", nil)
		req.Header.Set("X-Account-Id", "p1")
		resp, err := srv.App.Test(req)
		if err != nil {
			t.Fatalf("could not perform request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want 200", resp.Status)
		}
		raw, _ := io.ReadAll(resp.Body)
		var matches []map[string]interface{}
		if err := json.Unmarshal(raw, &matches); err != nil {
			t.Fatalf("could not unmarshal fixtures: %v", err)
		}
		if len(matches) == 0 {
			t.Error("no fixtures returned")
		}
	})

	t.Run("bet then cancel round-trips the stake", func(t *testing.T) {
		resp, body := doJSON(t, srv, "POST", "/api/v1/sports/bet", "p2",
			map[string]interface{}{"match_id": "m-1001", "side": "home", "stake": 1000})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("bet status = %v, want 200 (body %v)", resp.Status, body)
		}
		wagerID := body["wager_id"].(string)

		resp, body = doJSON(t, srv, "POST", "/api/v1/sports/cancel", "p2",
			map[string]interface{}{"wager_id": wagerID})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("cancel status = %v, want 200 (body %v)", resp.Status, body)
		}
		if body["balance"].(float64) != 100000 {
			t.Errorf("balance after cancel = %v, want 100000", body["balance"])
		}
	})

	t.Run("rejects a closed fixture", func(t *testing.T) {
		resp, _ := doJSON(t, srv, "POST", "/api/v1/sports/bet", "p2",
			map[string]interface{}{"match_id": "m-1004", "side": "home", "stake": 1000})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %v, want 400", resp.Status)
		}
	})
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, "POST", "/api/v1/parity/bet", "p3",
		map[string]interface{}{"choice": "even", "stake": 200})

	resp, body := doJSON(t, srv, "GET", "/api/v1/account/history?game=parity", "p3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want 200", resp.Status)
	}
	wagers, ok := body["wagers"].([]interface{})
	if !ok {
		t.Fatalf("history response missing wagers: %v", body)
	}
	if len(wagers) != 1 {
		t.Errorf("history has %d wagers, want 1", len(wagers))
	}
}
