package suez

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	loginPath = "/mon-compte-en-ligne/je-me-connecte"

	// sessionCookie is issued by the portal only on successful login
	sessionCookie = "eZSESSID"
)

// fetchToken loads the login page and stores its anti-forgery token on the session
func (s *session) fetchToken(ctx context.Context) error {
	resp, err := s.http.R().SetContext(ctx).Get(loginPath)
	if err != nil {
		return fmt.Errorf("failed to load login page: %w", err)
	}

	token, method, err := findToken(resp.String())
	if err != nil {
		s.log.Info("No token matcher succeeded on login page", "status", resp.StatusCode())
		return err
	}
	s.log.Debug("Found login token", "method", method)
	s.token = token
	return nil
}

// loginForm carries the credentials under every field name the portal
// versions have used.
func (s *session) loginForm(username, password string) map[string]string {
	return map[string]string{
		"_username":                  username,
		"_password":                  password,
		"_csrf_token":                s.token,
		"signin[username]":           username,
		"signin[password]":           "",
		"tsme_user_login[_username]": username,
		"tsme_user_login[_password]": password,
	}
}

// submitLogin fetches a token and posts the login form. Redirects are not followed.
func (s *session) submitLogin(ctx context.Context, username, password string) (*resty.Response, error) {
	if err := s.fetchToken(ctx); err != nil {
		return nil, err
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetFormData(s.loginForm(username, password)).
		Post(loginPath)
	if err != nil {
		return nil, &LoginSubmissionError{Err: err}
	}
	return resp, nil
}

// login authenticates the session. The status code of the POST is not
// meaningful, only the session cookie in the jar is.
func (s *session) login(ctx context.Context, username, password string) error {
	resp, err := s.submitLogin(ctx, username, password)
	if err != nil {
		return err
	}

	if !s.hasCookie(sessionCookie) {
		s.log.Debug("Login response carried no session cookie", "status", resp.StatusCode())
		return ErrInvalidCredentials
	}
	return nil
}

// checkCredentials reports whether the login POST response itself sets the session cookie
func (s *session) checkCredentials(ctx context.Context, username, password string) (bool, error) {
	resp, err := s.submitLogin(ctx, username, password)
	if err != nil {
		return false, err
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			return true, nil
		}
	}
	s.log.Debug("Credential check got no session cookie", "status", resp.StatusCode())
	return false, nil
}
