package remote

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/kymoja/darasa/core/account"
)

// apiError is the error envelope the hosted service returns.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one request against the hosted service and decodes the
// response into out (when non-nil). Failures are mapped onto the account
// error taxonomy; callers never see raw HTTP statuses.
func (b *Backend) call(method rest.Method, path string, query map[string]string, body, out interface{}, idToken string) error {
	req := rest.Request{
		Method:      method,
		BaseURL:     b.cfg.Remote.BaseURL + path,
		QueryParams: map[string]string{"key": b.cfg.Remote.APIKey},
		Headers:     map[string]string{"Content-Type": "application/json"},
	}
	for k, v := range query {
		req.QueryParams[k] = v
	}
	if idToken != "" {
		req.Headers["Authorization"] = "Bearer " + idToken
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s request", path)
		}
		req.Body = raw
	}

	res, err := b.client.Send(req)
	if err != nil {
		return errors.Wrap(account.ErrNetworkFailure, err.Error())
	}
	if res.StatusCode >= http.StatusBadRequest {
		return mapError(res)
	}
	if out != nil && res.Body != "" {
		if err = json.Unmarshal([]byte(res.Body), out); err != nil {
			return errors.Wrapf(err, "decoding %s response", path)
		}
	}
	return nil
}

func mapError(res *rest.Response) error {
	var apiErr apiError
	_ = json.Unmarshal([]byte(res.Body), &apiErr) // best effort; fall back to status

	switch apiErr.Error.Message {
	case "EMAIL_EXISTS":
		return account.ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return account.ErrInvalidCredentials
	case "USER_DISABLED":
		return account.ErrAccountDisabled
	}

	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return account.ErrPermissionDenied
	case http.StatusNotFound:
		return account.ErrNotFound
	case http.StatusConflict:
		return account.ErrDuplicateIdentifier
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return account.ErrNetworkFailure
	}
	return errors.Errorf("remote service: status %d: %s", res.StatusCode, res.Body)
}
