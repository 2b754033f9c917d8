// ABOUTME: Build identity constants
// ABOUTME: Reported in the CLI, control handshake, and mDNS records
package version

const (
	// Version is the release version, set at build time for tagged builds
	Version = "0.1.0"

	// Product is the user-facing product name
	Product = "Glasswing"

	// Manufacturer identifies the project in device info
	Manufacturer = "Glasswing Audio"
)
