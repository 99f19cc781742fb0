package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWebhookKey = []byte("0123456789abcdef0123456789abcdef")

func testWebhookSecret() string {
	return "whsec_" + base64.StdEncoding.EncodeToString(testWebhookKey)
}

// SignWebhook собирает заголовки так же, как их отправляет провайдер
func signWebhook(id string, ts time.Time, payload []byte) http.Header {
	timestamp := strconv.FormatInt(ts.Unix(), 10)

	mac := hmac.New(sha256.New, testWebhookKey)
	mac.Write([]byte(fmt.Sprintf("%s.%s.%s", id, timestamp, payload)))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	headers := http.Header{}
	headers.Set("svix-id", id)
	headers.Set("svix-timestamp", timestamp)
	headers.Set("svix-signature", "v1,"+signature)
	return headers
}

func TestSvixVerifier_Verify_Success(t *testing.T) {
	verifier, err := NewSvixVerifier(testWebhookSecret())
	require.NoError(t, err)

	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	assert.NoError(t, verifier.Verify(payload, signWebhook("msg_1", time.Now(), payload)))
}

func TestSvixVerifier_Verify_TamperedPayload(t *testing.T) {
	verifier, err := NewSvixVerifier(testWebhookSecret())
	require.NoError(t, err)

	headers := signWebhook("msg_1", time.Now(), []byte(`{"type":"user.created"}`))

	assert.Error(t, verifier.Verify([]byte(`{"type":"user.deleted"}`), headers))
}

func TestSvixVerifier_Verify_StaleTimestamp(t *testing.T) {
	verifier, err := NewSvixVerifier(testWebhookSecret())
	require.NoError(t, err)

	payload := []byte(`{}`)

	assert.Error(t, verifier.Verify(payload, signWebhook("msg_1", time.Now().Add(-time.Hour), payload)))
}

func TestSvixVerifier_Verify_MissingHeaders(t *testing.T) {
	verifier, err := NewSvixVerifier(testWebhookSecret())
	require.NoError(t, err)

	assert.Error(t, verifier.Verify([]byte(`{}`), http.Header{}))
}

func TestPublicIDFor(t *testing.T) {
	id := publicIDFor("My Photo.PNG")

	assert.Regexp(t, `^my-photo-[0-9a-f]{8}$`, id)
	assert.Regexp(t, `^image-[0-9a-f]{8}$`, publicIDFor(".png"))
}
