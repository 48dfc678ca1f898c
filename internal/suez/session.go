package suez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/telemetry"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/version"
)

const maxRedirects = 10

// session is the state of one Update or CheckCredentials call: its own
// cookie jar, and the token obtained from the login page. It is never
// stored on the Client.
type session struct {
	http    *resty.Client
	baseURL *url.URL
	log     *logger.Logger
	token   string
}

// formRedirectPolicy leaves form submissions where they land, the session
// cookie is read from the POST response itself. GETs follow redirects.
var formRedirectPolicy = resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
	if len(via) > 0 && via[0].Method == http.MethodPost {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}
	return nil
})

// withSession opens a cookie-aware HTTP session, hands it to fn and
// releases its connections on every exit path.
func (c *Client) withSession(ctx context.Context, fn func(context.Context, *session) error) error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New().
		SetBaseURL(c.baseURL.String()).
		SetCookieJar(jar).
		SetTimeout(c.timeout).
		SetRedirectPolicy(formRedirectPolicy).
		SetHeader("User-Agent", version.UserAgent())
	telemetry.InstrumentResty(client, c.tracer, c.log)
	defer client.GetClient().CloseIdleConnections()

	return fn(ctx, &session{
		http:    client,
		baseURL: c.baseURL,
		log:     c.log,
	})
}

// hasCookie reports whether the jar holds name for the portal root
func (s *session) hasCookie(name string) bool {
	for _, cookie := range s.http.GetClient().Jar.Cookies(s.baseURL) {
		if cookie.Name == name {
			return true
		}
	}
	return false
}
