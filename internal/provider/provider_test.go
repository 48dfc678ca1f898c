package provider

import (
	"errors"
	"testing"
)

func TestProviders(t *testing.T) {
	got := Providers()
	want := []string{"Eau Olivet", "toutsurmoneau"}

	if len(got) != len(want) {
		t.Fatalf("Providers() returned %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Providers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName Name
		wantURL  string
		wantErr  bool
	}{
		{
			name:     "empty selects default",
			input:    "",
			wantName: ToutSurMonEau,
			wantURL:  "https://www.toutsurmoneau.fr",
		},
		{
			name:     "toutsurmoneau",
			input:    "toutsurmoneau",
			wantName: ToutSurMonEau,
			wantURL:  "https://www.toutsurmoneau.fr",
		},
		{
			name:     "eau olivet",
			input:    "Eau Olivet",
			wantName: EauOlivet,
			wantURL:  "https://www.eau-olivet.fr",
		},
		{
			name:    "unknown",
			input:   "veolia",
			wantErr: true,
		},
		{
			name:    "names are case sensitive",
			input:   "eau olivet",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portal, err := Lookup(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownProvider) {
					t.Fatalf("Lookup(%q) error = %v, want ErrUnknownProvider", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup(%q) unexpected error: %v", tt.input, err)
			}
			if portal.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", portal.Name, tt.wantName)
			}
			if portal.BaseURL != tt.wantURL {
				t.Errorf("BaseURL = %q, want %q", portal.BaseURL, tt.wantURL)
			}
		})
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("toutsurmoneau") {
		t.Error("toutsurmoneau should be known")
	}
	if IsKnown("") {
		t.Error("empty name should not be known")
	}
}
