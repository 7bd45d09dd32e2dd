package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := New(store, auth.NewPasswordAuthenticator(store), jwtManager, slog.Default())

	r := chi.NewRouter()
	r.Mount("/api/v1", svc.Routes())
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %s: %v", rec.Body.String(), err)
	}
	return v
}

func registerUser(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"name":     "Tester",
		"password": "supersecret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[authResponse](t, rec)
	if resp.Token == "" {
		t.Fatal("Expected a token")
	}
	return resp.Token
}

func sampleBillBody() map[string]any {
	return map[string]any{
		"members": []map[string]string{
			{"name": "Alice"}, {"name": "Bob"},
		},
		"items": []map[string]any{
			{"name": "Pizza", "price": 200, "participants": []string{"Alice", "Bob"}},
			{"name": "Beer", "price": "95.50", "participants": []string{"Bob"}},
		},
		"config": map[string]any{
			"vatEnabled":           true,
			"serviceChargeEnabled": true,
			"serviceChargePercent": 10,
		},
	}
}

func TestComputeEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/compute", "", sampleBillBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	totals := decodeBody[models.DerivedTotals](t, rec)

	if totals.Subtotal != 295.50 {
		t.Errorf("Subtotal = %v, want 295.50", totals.Subtotal)
	}
	wantGrand := 295.50 * 1.10 * 1.07
	if math.Abs(totals.GrandTotal-wantGrand) > 0.01 {
		t.Errorf("GrandTotal = %v, want %v", totals.GrandTotal, wantGrand)
	}
	var sum float64
	for _, share := range totals.MemberShares {
		sum += share
	}
	if math.Abs(sum-totals.GrandTotal) > 0.01 {
		t.Errorf("shares sum %v != grand total %v", sum, totals.GrandTotal)
	}
}

func TestComputeEndpointStringPriceCoercion(t *testing.T) {
	h := newTestRouter(t)

	body := map[string]any{
		"members": []map[string]string{{"name": "Alice"}},
		"items": []map[string]any{
			{"name": "Garbage", "price": "not-a-number", "participants": []string{"Alice"}},
			{"name": "Soup", "price": "80", "participants": []string{"Alice"}},
		},
		"config": map[string]any{},
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/compute", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	totals := decodeBody[models.DerivedTotals](t, rec)
	if totals.Subtotal != 80 {
		t.Errorf("Subtotal = %v, want 80 (unparseable price coerced to 0)", totals.Subtotal)
	}
}

func TestPromptPayEndpoint(t *testing.T) {
	h := newTestRouter(t)

	t.Run("valid mobile target", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/promptpay", "", map[string]any{
			"target": "089-123-4567",
			"amount": 125.50,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		resp := decodeBody[qrResponse](t, rec)
		if resp.Payload == "" {
			t.Error("Expected a payload")
		}
	})

	t.Run("unsupported target is 422", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/promptpay", "", map[string]any{
			"target": "12345",
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Error.Code != "unsupported_payee_id" {
			t.Errorf("code = %q, want unsupported_payee_id", resp.Error.Code)
		}
	})
}

func TestAuthFlow(t *testing.T) {
	h := newTestRouter(t)

	token := registerUser(t, h, "alice@example.com")
	if token == "" {
		t.Fatal("no token")
	}

	t.Run("duplicate email rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email": "alice@example.com", "name": "Clone", "password": "supersecret",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email": "bob@example.com", "name": "Bob", "password": "short",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("login succeeds with right password", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "supersecret",
		})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("login fails with wrong password", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrongpassword",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("protected route requires token", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestBillLifecycle(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "owner@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/bills", token, sampleBillBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[models.BillSnapshot](t, rec)
	if created.ID == "" || created.GrandTotal == 0 {
		t.Fatalf("unexpected snapshot: %+v", created)
	}

	t.Run("empty item list rejected", func(t *testing.T) {
		body := sampleBillBody()
		body["items"] = []map[string]any{}
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bills", token, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("list returns the bill", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decodeBody[struct {
			Bills []models.BillSnapshot `json:"bills"`
		}](t, rec)
		if len(resp.Bills) != 1 || resp.Bills[0].ID != created.ID {
			t.Errorf("bills = %+v", resp.Bills)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills/"+created.ID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("other user cannot see it", func(t *testing.T) {
		other := registerUser(t, h, "intruder@example.com")
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills/"+created.ID, other, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("breakdown agrees with stored totals", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills/"+created.ID+"/breakdown?member=Bob", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var breakdown struct {
			TotalFood   float64 `json:"totalFood"`
			ExtraCharge float64 `json:"extraCharge"`
			NetTotal    float64 `json:"netTotal"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &breakdown); err != nil {
			t.Fatal(err)
		}
		// Bob eats half the pizza plus the beer.
		if math.Abs(breakdown.TotalFood-195.50) > 0.01 {
			t.Errorf("TotalFood = %v, want 195.50", breakdown.TotalFood)
		}
	})

	t.Run("breakdown for unknown member is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/bills/"+created.ID+"/breakdown?member=Nobody", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("delete then gone", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/v1/bills/"+created.ID, token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d", rec.Code)
		}
		rec = doJSON(t, h, http.MethodGet, "/api/v1/bills/"+created.ID, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status after delete = %d, want 404", rec.Code)
		}
	})
}

func TestBatchDeleteBills(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "batch@example.com")

	var ids []string
	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/bills", token, sampleBillBody())
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d status = %d", i, rec.Code)
		}
		ids = append(ids, decodeBody[models.BillSnapshot](t, rec).ID)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/bills:batchDelete", token, map[string]any{
		"ids": append(ids[:2:2], "missing-id"),
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("batch delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/bills", token, nil)
	resp := decodeBody[struct {
		Bills []models.BillSnapshot `json:"bills"`
	}](t, rec)
	if len(resp.Bills) != 1 || resp.Bills[0].ID != ids[2] {
		t.Errorf("remaining bills = %+v, want only %s", resp.Bills, ids[2])
	}
}

func TestRoomLifecycle(t *testing.T) {
	h := newTestRouter(t)

	body := sampleBillBody()
	body["hostName"] = "Alice"
	body["promptPayId"] = "0891234567"

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	room := decodeBody[models.PaymentRoom](t, rec)
	if room.ID == "" || room.HostUID != "anon" {
		t.Fatalf("unexpected room: %+v", room)
	}
	if len(room.Shares) != 2 {
		t.Fatalf("shares = %+v, want entries for both members", room.Shares)
	}

	t.Run("guest link is public", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/"+room.ID, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		got := decodeBody[models.PaymentRoom](t, rec)
		if got.PromptPayID != "0891234567" || len(got.Items) != 2 {
			t.Errorf("room = %+v", got)
		}
	})

	t.Run("member QR carries rounded share", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/"+room.ID+"/qr?member=Bob", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		resp := decodeBody[qrResponse](t, rec)
		if resp.Payload == "" || resp.Amount == nil {
			t.Fatalf("resp = %+v", resp)
		}
		want := math.Round(room.Shares["Bob"]*100) / 100
		if math.Abs(*resp.Amount-want) > 0.001 {
			t.Errorf("Amount = %v, want %v", *resp.Amount, want)
		}
		amountTag := fmt.Sprintf("54%02d%.2f", len(fmt.Sprintf("%.2f", want)), want)
		if !bytes.Contains([]byte(resp.Payload), []byte(amountTag)) {
			t.Errorf("payload %q missing amount field %q", resp.Payload, amountTag)
		}
	})

	t.Run("host QR is static", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/"+room.ID+"/qr", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		resp := decodeBody[qrResponse](t, rec)
		if resp.Amount != nil {
			t.Errorf("static QR should carry no amount: %+v", resp)
		}
	})

	t.Run("unknown member QR is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/"+room.ID+"/qr?member=Nobody", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("breakdown for a member", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/"+room.ID+"/breakdown?member=Alice", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("missing room is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/does-not-exist", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestRoomRejectsBadPayeeID(t *testing.T) {
	h := newTestRouter(t)

	body := sampleBillBody()
	body["hostName"] = "Alice"
	body["promptPayId"] = "12345"

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms", "", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestDraftSync(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "draft@example.com")

	t.Run("missing draft is 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/draft", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("put then get round-trips", func(t *testing.T) {
		draft := map[string]any{"items": []string{"a"}, "hostName": "Alice"}
		rec := doJSON(t, h, http.MethodPut, "/api/v1/draft", token, draft)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body.String())
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/draft", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}
		got := decodeBody[map[string]any](t, rec)
		if got["hostName"] != "Alice" {
			t.Errorf("draft = %v", got)
		}
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/draft", bytes.NewBufferString("{not json"))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("delete clears", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/v1/draft", token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d", rec.Code)
		}
		rec = doJSON(t, h, http.MethodGet, "/api/v1/draft", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
