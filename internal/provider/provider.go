package provider

import (
	"errors"
	"fmt"
	"sort"
)

// Name identifies a water portal operator
type Name string

// Known portal operators
const (
	ToutSurMonEau Name = "toutsurmoneau"
	EauOlivet     Name = "Eau Olivet"
)

// Default is used when no provider is configured
const Default = ToutSurMonEau

// ErrUnknownProvider is returned when a provider name is not in the registry
var ErrUnknownProvider = errors.New("unknown provider")

// baseURLs maps each operator to the root of its customer portal.
// All operators run the same portal software, only the host differs.
var baseURLs = map[Name]string{
	ToutSurMonEau: "https://www.toutsurmoneau.fr",
	EauOlivet:     "https://www.eau-olivet.fr",
}

// Portal is a resolved registry entry
type Portal struct {
	Name    Name
	BaseURL string
}

// Providers returns the known provider names, sorted
func Providers() []string {
	names := make([]string, 0, len(baseURLs))
	for name := range baseURLs {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a provider name to its portal. An empty name selects Default.
func Lookup(name string) (Portal, error) {
	if name == "" {
		name = string(Default)
	}
	base, ok := baseURLs[Name(name)]
	if !ok {
		return Portal{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownProvider, name, Providers())
	}
	return Portal{Name: Name(name), BaseURL: base}, nil
}

// IsKnown reports whether name is in the registry
func IsKnown(name string) bool {
	_, ok := baseURLs[Name(name)]
	return ok
}
