package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test-secret"
	sig := signFor(secret, "order_abc", "pay_xyz")

	if !VerifySignature(secret, "order_abc", "pay_xyz", sig) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifySignature(secret, "order_abc", "pay_other", sig) {
		t.Fatalf("expected signature for another payment to fail")
	}
	if VerifySignature(secret, "order_abc", "pay_xyz", "deadbeef") {
		t.Fatalf("expected forged signature to fail")
	}
	if VerifySignature(secret, "", "pay_xyz", sig) {
		t.Fatalf("expected empty order id to fail")
	}
}

func TestVerifySignatureTrimsAndLowercases(t *testing.T) {
	secret := "test-secret"
	sig := signFor(secret, "order_abc", "pay_xyz")

	upper := " " + sig + " "
	if !VerifySignature(secret, "order_abc", "pay_xyz", upper) {
		t.Fatalf("expected padded signature to verify")
	}
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	var gotBody createOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _, ok := r.BasicAuth(); !ok || user != "key-id" {
			t.Errorf("expected basic auth with key id, got %q", user)
		}
		if err := jsonDecode(r, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_test123","amount":12550,"currency":"INR","receipt":"rcpt-1","status":"created"}`))
	}))
	defer server.Close()

	client := New(Config{KeyID: "key-id", KeySecret: "secret", BaseURL: server.URL})
	order, err := client.CreateOrder(context.Background(), decimal.RequireFromString("125.50"), "INR", "rcpt-1")
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.ID != "order_test123" {
		t.Fatalf("unexpected order id: %s", order.ID)
	}
	if gotBody.Amount != 12550 {
		t.Fatalf("expected amount 12550 paise, got %d", gotBody.Amount)
	}
}

func TestCreateOrderSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer server.Close()

	client := New(Config{KeyID: "key-id", KeySecret: "secret", BaseURL: server.URL})
	_, err := client.CreateOrder(context.Background(), decimal.NewFromInt(1), "INR", "rcpt-1")
	if err == nil {
		t.Fatalf("expected error from API failure")
	}
}

func jsonDecode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
