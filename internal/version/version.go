// ABOUTME: Product and version identifiers for the bridge binaries
// ABOUTME: Reported by the CLI at startup and by -version
package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "0.1.0"

const (
	Product      = "pcmbridge"
	Manufacturer = "Resonate Protocol"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
