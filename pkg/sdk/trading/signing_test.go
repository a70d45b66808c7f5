package trading

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/betbot/gosdk/pkg/sdk/types"
)

func TestBuildHmacSignature(t *testing.T) {
	secret := base64.URLEncoding.EncodeToString([]byte("super-secret-hmac-key-material-0"))
	body := `{"hash": "0x123"}`

	sig, err := buildHmacSignature(secret, 1000000, "POST", "/order", &body)
	if err != nil {
		t.Fatalf("buildHmacSignature failed: %v", err)
	}

	// Independent computation with the stdlib url-safe codec.
	key, _ := base64.URLEncoding.DecodeString(secret)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("1000000" + "POST" + "/order" + body))
	want := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	if sig != want {
		t.Errorf("signature mismatch:\n got %s\nwant %s", sig, want)
	}
	if strings.ContainsAny(sig, "+/") {
		t.Errorf("signature must be url-safe base64: %s", sig)
	}
}

func TestBuildHmacSignature_BodyChangesSignature(t *testing.T) {
	secret := base64.URLEncoding.EncodeToString([]byte("super-secret-hmac-key-material-0"))
	bodyA := `{"a":1}`
	bodyB := `{"a":2}`

	sigA, err := buildHmacSignature(secret, 42, "POST", "/order", &bodyA)
	if err != nil {
		t.Fatal(err)
	}
	sigB, _ := buildHmacSignature(secret, 42, "POST", "/order", &bodyB)
	sigNone, _ := buildHmacSignature(secret, 42, "POST", "/order", nil)

	if sigA == sigB || sigA == sigNone {
		t.Error("different bodies must produce different signatures")
	}

	again, _ := buildHmacSignature(secret, 42, "POST", "/order", &bodyA)
	if sigA != again {
		t.Error("signature must be deterministic")
	}
}

func TestBuildHmacSignature_BadSecret(t *testing.T) {
	if _, err := buildHmacSignature("!!!not-base64!!!", 1, "GET", "/", nil); err == nil {
		t.Error("undecodable secret should error")
	}
}

func TestL2Headers(t *testing.T) {
	s := testSigner(t)
	creds := &types.APICreds{
		Key:        "api-key-1",
		Secret:     base64.URLEncoding.EncodeToString([]byte("super-secret-hmac-key-material-0")),
		Passphrase: "pass-1",
	}

	headers, err := l2Headers(s, creds, "GET", "/data/orders", nil)
	if err != nil {
		t.Fatalf("l2Headers failed: %v", err)
	}

	if headers["POLY_ADDRESS"] != s.Address().Hex() {
		t.Errorf("unexpected POLY_ADDRESS: %s", headers["POLY_ADDRESS"])
	}
	if headers["POLY_API_KEY"] != "api-key-1" || headers["POLY_PASSPHRASE"] != "pass-1" {
		t.Error("credentials not propagated into headers")
	}
	for _, k := range []string{"POLY_SIGNATURE", "POLY_TIMESTAMP"} {
		if headers[k] == "" {
			t.Errorf("%s missing", k)
		}
	}
}

func TestL1Headers(t *testing.T) {
	s := testSigner(t)
	headers, err := l1Headers(s, types.ChainPolygon, 0)
	if err != nil {
		t.Fatalf("l1Headers failed: %v", err)
	}
	if headers["POLY_ADDRESS"] != s.Address().Hex() {
		t.Errorf("unexpected POLY_ADDRESS: %s", headers["POLY_ADDRESS"])
	}
	if headers["POLY_NONCE"] != "0" {
		t.Errorf("unexpected POLY_NONCE: %s", headers["POLY_NONCE"])
	}
	if !strings.HasPrefix(headers["POLY_SIGNATURE"], "0x") {
		t.Errorf("expected hex signature, got %q", headers["POLY_SIGNATURE"])
	}
}

func TestBuildClobAuthSignature_Deterministic(t *testing.T) {
	s := testSigner(t)
	a, err := buildClobAuthSignature(s, types.ChainPolygon, 1700000000, 0)
	if err != nil {
		t.Fatalf("buildClobAuthSignature failed: %v", err)
	}
	b, _ := buildClobAuthSignature(s, types.ChainPolygon, 1700000000, 0)
	if a != b {
		t.Error("same inputs must produce the same signature")
	}
	c, _ := buildClobAuthSignature(s, types.ChainPolygon, 1700000001, 0)
	if a == c {
		t.Error("timestamp must be part of the signed payload")
	}
	if len(a) != 2+130 {
		t.Errorf("expected 65-byte hex signature, got length %d", len(a))
	}
}

func TestBuilderHeaders(t *testing.T) {
	builder := &types.BuilderConfig{
		Key:        "builder-key",
		Secret:     base64.URLEncoding.EncodeToString([]byte("builder-secret-key-material-0000")),
		Passphrase: "builder-pass",
	}
	body := `{"order":{}}`

	headers, err := builderHeaders(builder, "POST", "/order", &body)
	if err != nil {
		t.Fatalf("builderHeaders failed: %v", err)
	}
	if headers["POLY_BUILDER_API_KEY"] != "builder-key" {
		t.Errorf("unexpected builder key header: %s", headers["POLY_BUILDER_API_KEY"])
	}
	for _, k := range []string{"POLY_BUILDER_SIGNATURE", "POLY_BUILDER_TIMESTAMP", "POLY_BUILDER_PASSPHRASE"} {
		if headers[k] == "" {
			t.Errorf("%s missing", k)
		}
	}
}
