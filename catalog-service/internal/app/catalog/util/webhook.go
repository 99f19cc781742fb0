package util

import (
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"
)

// SvixVerifier проверяет заголовки svix-id, svix-timestamp, svix-signature
type SvixVerifier struct {
	webhook *svix.Webhook
}

// NewSvixVerifier принимает секрет в формате whsec_<base64>
func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to init webhook verifier: %w", err)
	}
	return &SvixVerifier{webhook: wh}, nil
}

func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	return v.webhook.Verify(payload, headers)
}
