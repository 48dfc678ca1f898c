package suez

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestSession runs fn against a session on a server answering every
// request with status and body.
func withTestSession(t *testing.T, status int, body string, fn func(ctx context.Context, s *session)) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.NoError(t, c.withSession(context.Background(), func(ctx context.Context, s *session) error {
		fn(ctx, s)
		return nil
	}))
}

func TestFetchJSONErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"with message", http.StatusOK, `["ERR","Compteur inconnu"]`, "Compteur inconnu"},
		{"marker only", http.StatusOK, `["ERR"]`, "Unknown error"},
		{"numeric message", http.StatusOK, `["ERR",404]`, "404"},
		{"on error status", http.StatusInternalServerError, `["ERR","Maintenance"]`, "Maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestSession(t, tt.status, tt.body, func(ctx context.Context, s *session) {
				rows, err := s.fetchJSON(ctx, "2024/5/1", dataPath)
				assert.Nil(t, rows)

				var remote *RemoteError
				require.ErrorAs(t, err, &remote)
				assert.Equal(t, tt.wantMessage, remote.Message)
				assert.Equal(t, dataPath+"/2024/5/1", remote.Endpoint)
			})
		})
	}
}

func TestFetchJSONPayloads(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		withTestSession(t, http.StatusOK, `[["1",0.5,12]]`, func(ctx context.Context, s *session) {
			rows, err := s.fetchJSON(ctx, "", historyPath)
			require.NoError(t, err)
			require.Len(t, rows, 1)
		})
	})

	t.Run("empty array", func(t *testing.T) {
		withTestSession(t, http.StatusOK, `[]`, func(ctx context.Context, s *session) {
			rows, err := s.fetchJSON(ctx, "", historyPath)
			require.NoError(t, err)
			require.NotNil(t, rows)
			require.Empty(t, rows)
		})
	})

	t.Run("object", func(t *testing.T) {
		withTestSession(t, http.StatusOK, `{"ERR":true}`, func(ctx context.Context, s *session) {
			_, err := s.fetchJSON(ctx, "", historyPath)
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
		})
	})

	t.Run("html on error status", func(t *testing.T) {
		withTestSession(t, http.StatusBadGateway, `<html>502</html>`, func(ctx context.Context, s *session) {
			_, err := s.fetchJSON(ctx, "", historyPath)
			var status *StatusError
			require.ErrorAs(t, err, &status)
			assert.Equal(t, http.StatusBadGateway, status.StatusCode)
		})
	})

	t.Run("html on ok status", func(t *testing.T) {
		withTestSession(t, http.StatusOK, `<html>login</html>`, func(ctx context.Context, s *session) {
			_, err := s.fetchJSON(ctx, "", historyPath)
			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, historyPath, malformed.Field)
		})
	})
}

func TestDiscoverCounterID(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "anchor",
			page: `<ul><li><a href="/aide">Aide</a></li><li><a href="/mon-compte-en-ligne/exporter-consommation/month/998877">CSV</a></li></ul>`,
			want: "998877",
		},
		{
			name: "inline script",
			page: `<script>var exportUrl = "/mon-compte-en-ligne/exporter-consommation/month/112233";</script>`,
			want: "112233",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTestSession(t, http.StatusOK, tt.page, func(ctx context.Context, s *session) {
				id, err := s.discoverCounterID(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.want, id)
			})
		})
	}
}

func TestRowValidation(t *testing.T) {
	payload := []any{
		[]any{"1", 1.0, 2.0},
		"not a row",
		[]any{"3", 1.0},
	}

	_, err := row(payload, 0, 3, "this_month")
	require.NoError(t, err)

	for _, idx := range []int{1, 2, 3, -1} {
		_, err := row(payload, idx, 3, "this_month")
		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed, "index %d", idx)
		assert.Equal(t, "this_month", malformed.Field)
	}

	_, err = number("12", "total")
	require.Error(t, err)
	_, err = number(true, "total")
	require.Error(t, err)
	_, err = text(12.0, "label")
	require.Error(t, err)
}
