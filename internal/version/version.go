package version

import "runtime"

// Build information. Populated at build-time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}

// UserAgent is sent with every request to the water portals
func UserAgent() string {
	return "toutsurmoneau-exporter/" + Version + " (+https://github.com/zgpcy/toutsurmoneau-exporter)"
}
