package suez

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/clock"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/timezone"
)

const (
	testUser    = "jean@example.fr"
	testPass    = "s3cret"
	testCounter = "424242"

	loginPageA = `<form method="post"><input type="hidden" name="_csrf_token" value="tok-a">` + "\n</form>"
	loginPageB = `<script>window.app = JSON.parse("{\u0022csrfToken\u0022\u003A\u0022tok\u002Db\u0022,\u0022locale\u0022\u003A\u0022fr\u0022}");</script>`
)

// fakePortal is a scripted water portal. Month pages are keyed "year/month";
// a month without a page answers with the error envelope.
type fakePortal struct {
	mu sync.Mutex

	loginPage       string
	rejectLogin     bool
	dropLoginPost   bool
	consumptionPage string
	months          map[string]string
	history         string

	requests   map[string]int
	postedForm map[string]string
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		loginPage:       loginPageA,
		consumptionPage: `<a href="/mon-compte-en-ligne/exporter-consommation/month/` + testCounter + `">Exporter</a>`,
		months:          map[string]string{},
		history:         `[]`,
		requests:        map[string]int{},
	}
}

func (p *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests[r.Method+" "+r.URL.Path]++

	switch {
	case r.URL.Path == loginPath && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(p.loginPage))

	case r.URL.Path == loginPath && r.Method == http.MethodPost:
		if p.dropLoginPost {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		_ = r.ParseForm()
		p.postedForm = map[string]string{}
		for k := range r.PostForm {
			p.postedForm[k] = r.PostForm.Get(k)
		}
		if !p.rejectLogin && r.PostForm.Get("_username") == testUser && r.PostForm.Get("_password") == testPass && r.PostForm.Get("_csrf_token") != "" {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "sess-1", Path: "/"})
		}
		w.Header().Set("Location", "/mon-compte-en-ligne/tableau-de-bord")
		w.WriteHeader(http.StatusFound)

	case r.URL.Path == "/mon-compte-en-ligne/tableau-de-bord":
		_, _ = w.Write([]byte("dashboard"))

	case r.URL.Path == consumptionPath:
		_, _ = w.Write([]byte(p.consumptionPage))

	case strings.HasPrefix(r.URL.Path, dataPath+"/"):
		tail := strings.TrimPrefix(r.URL.Path, dataPath+"/")
		key := tail[:strings.LastIndex(tail, "/")]
		body, ok := p.months[key]
		if !ok {
			body = `["ERR","Aucune donnée pour cette période"]`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))

	case r.URL.Path == historyPath+"/"+testCounter:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(p.history))

	default:
		http.NotFound(w, r)
	}
}

func (p *fakePortal) count(method, path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[method+" "+path]
}

func (p *fakePortal) monthCount(key string) int {
	return p.count(http.MethodGet, dataPath+"/"+key+"/"+testCounter)
}

// monthPage renders days rows; rowFor returns (delta, total) for a 1-based day
func monthPage(days int, rowFor func(day int) (float64, float64)) string {
	var b strings.Builder
	b.WriteString("[")
	for day := 1; day <= days; day++ {
		if day > 1 {
			b.WriteString(",")
		}
		delta, total := rowFor(day)
		fmt.Fprintf(&b, `["%d",%v,%v]`, day, delta, total)
	}
	b.WriteString("]")
	return b.String()
}

func zeroRows(int) (float64, float64) { return 0, 0 }

const testHistory = `[["01/24",10.5,9,"Janvier 2024"],["02/24",11,12.25,"Février 2024"],120,110,15]`

type testEnv struct {
	portal *fakePortal
	server *httptest.Server
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	portal := newFakePortal()
	server := httptest.NewServer(portal)
	t.Cleanup(server.Close)
	return &testEnv{portal: portal, server: server, logs: &bytes.Buffer{}}
}

// client builds a Client against the fake portal, frozen at now (Paris time)
func (e *testEnv) client(t *testing.T, now time.Time, counterID string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Username:  testUser,
		Password:  testPass,
		CounterID: counterID,
		BaseURL:   e.server.URL,
		Timeout:   5 * time.Second,
		Logger:    logger.NewWithWriter(e.logs, "debug"),
		Clock:     clock.Fixed(now),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func parisTime(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, timezone.Location)
}
