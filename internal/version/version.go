package version

// Version is the current version of the candle service binaries.
// Set at build time using ldflags:
// -ldflags "-X github.com/tradelens/chartdata/internal/version.Version=1.2.3"
// The default value indicates a development build.
var Version = "main"

// GetVersion returns the current version.
func GetVersion() string {
	return Version
}
