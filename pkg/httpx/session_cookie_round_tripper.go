package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrSessionRejected = errors.New("session rejected")

// SessionCookieRoundTripper добавляет к каждому запросу сессионную cookie.
type SessionCookieRoundTripper struct {
	next  http.RoundTripper
	name  string
	value string
}

func NewSessionCookieRoundTripper(
	next http.RoundTripper,
	name string,
	value string,
) SessionCookieRoundTripper {
	return SessionCookieRoundTripper{
		next:  next,
		name:  name,
		value: value,
	}
}

func (rt SessionCookieRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.value == "" {
		return rt.next.RoundTrip(req) //nolint:wrapcheck
	}

	// RoundTripper не должен менять исходный запрос.
	req = req.Clone(req.Context())
	req.AddCookie(&http.Cookie{Name: rt.name, Value: rt.value})

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()

		return nil, fmt.Errorf("%s: %w", resp.Status, ErrSessionRejected)
	}

	return resp, nil
}
