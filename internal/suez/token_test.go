package suez

import (
	"errors"
	"testing"
)

func TestFindToken(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantToken  string
		wantMethod string
		wantErr    error
	}{
		{
			name:       "form field group is returned unchanged",
			body:       loginPageA,
			wantToken:  `" value="tok-a">`,
			wantMethod: "form field",
		},
		{
			name:       "escaped script is unicode-unescaped",
			body:       loginPageB,
			wantToken:  "tok-b",
			wantMethod: "escaped script",
		},
		{
			name:       "form field wins when both are present",
			body:       loginPageB + "\n" + loginPageA,
			wantToken:  `" value="tok-a">`,
			wantMethod: "form field",
		},
		{
			name:       "empty form field falls through to script",
			body:       "csrf_token\n" + loginPageB,
			wantToken:  "tok-b",
			wantMethod: "escaped script",
		},
		{
			name:    "no token",
			body:    "<html><body>Maintenance en cours</body></html>",
			wantErr: ErrTokenNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, method, err := findToken(tt.body)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("findToken() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("findToken() unexpected error: %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
		})
	}
}

func TestUnescapeUnicode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\u002Db`, "a-b"},
		{`\u00e9t\u00e9`, "été"},
		{`\x41\U0001F4A7`, "A\U0001F4A7"},
		{`\uD83D\uDCA7`, "\U0001F4A7"},
		{`tab\there`, "tab\there"},
		{`keep\/slash`, `keep\/slash`},
		{`short\u12`, `short\u12`},
		{`trailing\`, `trailing\`},
		{`back\\slash`, `back\slash`},
	}

	for _, tt := range tests {
		if got := unescapeUnicode(tt.in); got != tt.want {
			t.Errorf("unescapeUnicode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
