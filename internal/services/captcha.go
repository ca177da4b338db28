package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// VerifyRecaptcha checks a client captcha token against Google's siteverify
// endpoint. An empty secret means verification is not configured and the
// check passes.
func VerifyRecaptcha(ctx context.Context, secret, token string) (bool, error) {
	if secret == "" {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recaptchaVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.Success, nil
}
