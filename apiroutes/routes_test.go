package apiroutes

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/services"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

type countingRelay struct {
	mu         sync.Mutex
	requests   []types.RelayRequest
	err        error
	minBalance uint64
}

func (r *countingRelay) Submit(ctx context.Context, req types.RelayRequest) (*types.RelayReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.requests = append(r.requests, req)
	return &types.RelayReceipt{TxHash: fmt.Sprintf("sig%d", len(r.requests)), CorrelationID: "test"}, nil
}

func (r *countingRelay) Health(ctx context.Context) (*types.FeePayerHealth, error) {
	if r.err != nil {
		return nil, r.err
	}
	minBalance := r.minBalance
	if minBalance == 0 {
		minBalance = 5000
	}
	return &types.FeePayerHealth{
		Network:            "devnet",
		RpcEndpoint:        "http://localhost:8899",
		FeePayerPublicKey:  "payer",
		BalanceLamports:    25000,
		MinBalanceLamports: minBalance,
	}, nil
}

func (r *countingRelay) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type testClient struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

type identityKey struct {
	publicKey  string
	privateKey ed25519.PrivateKey
}

func newIdentityKey(t *testing.T) identityKey {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return identityKey{publicKey: util.EncodePublicKey(pub), privateKey: priv}
}

func (k identityKey) sign(t *testing.T, message string) string {
	sig, err := util.SignEncoded(message, k.privateKey)
	require.NoError(t, err)
	return sig
}

func setupRouter(t *testing.T) (*testClient, *countingRelay) {
	gin.SetMode(gin.TestMode)
	global.Conf = global.Config{}
	global.Conf.ApplyDefaults()
	global.RateLimiter = nil

	_, sessionKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	relay := &countingRelay{}
	router := ConfigRoutes(gin.New(), Dependencies{
		Store:        repository.NewMemoryStore(),
		SessionStore: services.NewMemorySessionStore(),
		Relay:        relay,
		ReplayGuard:  services.NewMemoryReplayGuard(5 * time.Minute),
		SessionKey:   sessionKey,
	})
	return &testClient{t: t, router: router}, relay
}

func (tc *testClient) do(method, path string, body interface{}) (int, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == global.Conf.Session.CookieName {
			if c.MaxAge < 0 {
				tc.cookie = nil
			} else {
				tc.cookie = c
			}
		}
	}

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(tc.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (tc *testClient) registerAndLogin(key identityKey) {
	code, _ := tc.do(http.MethodPost, "/api/identity/register", map[string]interface{}{"publicKey": key.publicKey})
	require.Equal(tc.t, http.StatusOK, code)

	challenge := util.LoginMessage(time.Now().UnixMilli())
	code, body := tc.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"publicKey": key.publicKey,
		"message":   challenge,
		"signature": key.sign(tc.t, challenge),
	})
	require.Equal(tc.t, http.StatusOK, code, body)
	require.NotNil(tc.t, tc.cookie)
}

func (tc *testClient) unlockMessages(key identityKey) (int, map[string]interface{}) {
	return tc.do(http.MethodPost, "/api/features/verify", map[string]interface{}{
		"publicKey":   key.publicKey,
		"featureName": types.FeatureMessages,
		"signature":   key.sign(tc.t, util.VerifyFeatureMessage(types.FeatureMessages, key.publicKey)),
	})
}

func sendBody(t *testing.T, from identityKey, to, content string, encrypted bool, ts time.Time) map[string]interface{} {
	millis := ts.UnixMilli()
	return map[string]interface{}{
		"fromPublicKey": from.publicKey,
		"toPublicKey":   to,
		"content":       content,
		"isEncrypted":   encrypted,
		"timestamp":     millis,
		"signature":     from.sign(t, util.SendMessage(from.publicKey, to, content, encrypted, millis)),
	}
}

func TestSessionLifecycle(t *testing.T) {
	tc, _ := setupRouter(t)
	alice := newIdentityKey(t)

	code, body := tc.do(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["authenticated"])

	tc.registerAndLogin(alice)

	code, body = tc.do(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["authenticated"])
	identity := body["identity"].(map[string]interface{})
	assert.Equal(t, alice.publicKey, identity["publicKey"])

	code, body = tc.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = tc.do(http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["authenticated"])
}

func TestLoginRejections(t *testing.T) {
	tc, _ := setupRouter(t)
	alice := newIdentityKey(t)
	challenge := util.LoginMessage(time.Now().UnixMilli())

	code, body := tc.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"publicKey": alice.publicKey,
		"message":   challenge,
		"signature": alice.sign(t, challenge),
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body["error"], "register first")

	tc.do(http.MethodPost, "/api/identity/register", map[string]interface{}{"publicKey": alice.publicKey})
	code, body = tc.do(http.MethodPost, "/api/auth/login", map[string]interface{}{
		"publicKey": alice.publicKey,
		"message":   challenge,
		"signature": alice.sign(t, "something else"),
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_signature", body["code"])

	code, _ = tc.do(http.MethodPost, "/api/auth/login", map[string]interface{}{"publicKey": alice.publicKey})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Nil(t, tc.cookie)
}

func TestIdentityEndpoints(t *testing.T) {
	tc, relay := setupRouter(t)
	alice := newIdentityKey(t)

	code, _ := tc.do(http.MethodGet, "/api/identity/"+alice.publicKey, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body := tc.do(http.MethodPost, "/api/identity/register", map[string]interface{}{"publicKey": alice.publicKey, "displayName": "  Alice  "})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice", body["displayName"])

	code, body = tc.do(http.MethodPatch, "/api/identity/"+alice.publicKey, map[string]interface{}{"displayName": "Alice B"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alice B", body["displayName"])

	code, body = tc.do(http.MethodPatch, "/api/identity/"+alice.publicKey, map[string]interface{}{"displayName": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid display name", body["error"])

	code, body = tc.do(http.MethodPost, "/api/identity/publish", map[string]interface{}{
		"publicKey": alice.publicKey,
		"signature": alice.sign(t, util.PublishIdentityMessage(alice.publicKey)),
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "sig1", body["txHash"])
	assert.Equal(t, "https://solscan.io/tx/sig1", body["explorer"])
	assert.Equal(t, 1, relay.count())

	code, body = tc.do(http.MethodGet, "/api/identity/"+alice.publicKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isVerified"])
	assert.Equal(t, "sig1", body["onchainTxHash"])

	code, _ = tc.do(http.MethodPost, "/api/identity/publish", map[string]interface{}{
		"publicKey": alice.publicKey,
		"signature": alice.sign(t, "Publish identity: someone else"),
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, 1, relay.count())
}

func TestVerifySignatureEndpoint(t *testing.T) {
	tc, _ := setupRouter(t)
	alice := newIdentityKey(t)

	code, body := tc.do(http.MethodPost, "/api/identity/verify", map[string]interface{}{
		"message":   "hello",
		"signature": alice.sign(t, "hello"),
		"publicKey": alice.publicKey,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])

	code, body = tc.do(http.MethodPost, "/api/identity/verify", map[string]interface{}{
		"message":   "hello!",
		"signature": alice.sign(t, "hello"),
		"publicKey": alice.publicKey,
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["valid"])

	code, body = tc.do(http.MethodPost, "/api/identity/verify", map[string]interface{}{
		"message":   "hello",
		"signature": alice.sign(t, "hello"),
		"publicKey": "not-a-key",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["valid"])
}

func TestFeatureVerifiedOnce(t *testing.T) {
	tc, relay := setupRouter(t)
	alice := newIdentityKey(t)
	tc.registerAndLogin(alice)

	code, body := tc.unlockMessages(alice)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "sig1", body["txHash"])
	assert.Equal(t, types.FeatureMessages, body["featureName"])

	code, body = tc.unlockMessages(alice)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "already_verified", body["code"])
	assert.Equal(t, "sig1", body["txHash"])
	assert.Equal(t, 1, relay.count())

	code, body = tc.do(http.MethodGet, "/api/features/status/"+alice.publicKey, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{types.FeatureMessages}, body["verifiedFeatures"])
	assert.Len(t, body["verifications"], 1)
}

func TestSendAndListMessages(t *testing.T) {
	tc, relay := setupRouter(t)
	alice, bob := newIdentityKey(t), newIdentityKey(t)
	tc.registerAndLogin(alice)

	code, body := tc.do(http.MethodPost, "/api/messages/send", sendBody(t, alice, bob.publicKey, "hello", false, time.Now()))
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "feature_locked", body["code"])
	assert.Equal(t, types.FeatureMessages, body["featureName"])

	code, _ = tc.unlockMessages(alice)
	require.Equal(t, http.StatusOK, code)

	input := sendBody(t, alice, bob.publicKey, "hello", false, time.Now())
	code, body = tc.do(http.MethodPost, "/api/messages/send", input)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "sig2", body["txHash"])
	assert.Equal(t, "MSG:PUBLIC:"+alice.publicKey+":"+bob.publicKey+":hello", string(relay.requests[1].Memo))

	code, body = tc.do(http.MethodGet, "/api/messages/"+alice.publicKey, nil)
	require.Equal(t, http.StatusOK, code)
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].(map[string]interface{})["contentPreview"])

	code, body = tc.do(http.MethodGet, "/api/messages/"+bob.publicKey, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Cannot access messages for another identity", body["error"])

	// same signature again
	code, body = tc.do(http.MethodPost, "/api/messages/send", input)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "replay_detected", body["code"])
	assert.Equal(t, 2, relay.count())
}

func TestSendMessageRejections(t *testing.T) {
	tc, relay := setupRouter(t)
	alice, bob := newIdentityKey(t), newIdentityKey(t)
	tc.registerAndLogin(alice)
	code, _ := tc.unlockMessages(alice)
	require.Equal(t, http.StatusOK, code)

	code, _ = tc.do(http.MethodPost, "/api/messages/send", sendBody(t, alice, bob.publicKey, "stale", false, time.Now().Add(-10*time.Minute)))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = tc.do(http.MethodPost, "/api/messages/send", sendBody(t, bob, alice.publicKey, "spoofed", false, time.Now()))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = tc.do(http.MethodPost, "/api/messages/send", sendBody(t, alice, bob.publicKey, strings.Repeat("a", 501), false, time.Now()))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = tc.do(http.MethodPost, "/api/messages/send", sendBody(t, alice, bob.publicKey, "not base64!", true, time.Now()))
	assert.Equal(t, http.StatusBadRequest, code)

	tampered := sendBody(t, alice, bob.publicKey, "hello", false, time.Now())
	tampered["content"] = "hello?"
	code, _ = tc.do(http.MethodPost, "/api/messages/send", tampered)
	assert.Equal(t, http.StatusUnauthorized, code)

	// only the feature unlock reached the ledger
	assert.Equal(t, 1, relay.count())
}

func TestMessagesRequireSession(t *testing.T) {
	tc, _ := setupRouter(t)
	alice := newIdentityKey(t)

	code, body := tc.do(http.MethodGet, "/api/messages/"+alice.publicKey, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", body["code"])

	tc.cookie = &http.Cookie{Name: global.Conf.Session.CookieName, Value: "garbage"}
	code, _ = tc.do(http.MethodPost, "/api/messages/send", sendBody(t, alice, alice.publicKey, "hi", false, time.Now()))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBlockchainHealth(t *testing.T) {
	tc, relay := setupRouter(t)

	code, body := tc.do(http.MethodGet, "/api/health/blockchain", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "devnet", body["network"])
	assert.Equal(t, float64(25000), body["balanceLamports"])
	assert.Equal(t, 0.000025, body["balance"])
	assert.Equal(t, true, body["isBalanceSufficient"])
	assert.Equal(t, "0.000005 SOL", body["minBalanceRequired"])
	assert.Equal(t, float64(5), body["estimatedTransactionsRemaining"])

	// the minimum and the estimate follow the configured minimum balance
	relay.minBalance = 10000
	code, body = tc.do(http.MethodGet, "/api/health/blockchain", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0.00001 SOL", body["minBalanceRequired"])
	assert.Equal(t, float64(2), body["estimatedTransactionsRemaining"])

	relay.minBalance = 30000
	_, body = tc.do(http.MethodGet, "/api/health/blockchain", nil)
	assert.Equal(t, false, body["isBalanceSufficient"])

	relay.err = types.ErrFeePayerNotConfigured
	code, body = tc.do(http.MethodGet, "/api/health/blockchain", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "fee_payer_misconfigured", body["code"])
}
