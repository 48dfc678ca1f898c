// Package provider holds the static registry of water portal operators.
//
// Every operator runs the same customer portal software under its own host
// name, so a provider is nothing more than a display name and a base URL:
//
//	toutsurmoneau -> https://www.toutsurmoneau.fr
//	Eau Olivet    -> https://www.eau-olivet.fr
//
// Providers lists the names for configuration validation and the CLI
// "providers" command. Lookup resolves a name, falling back to Default
// when the name is empty.
package provider
