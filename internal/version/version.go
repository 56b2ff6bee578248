// ABOUTME: Version constants for the application
// ABOUTME: Single place to bump on release
package version

const (
	// Version is the application version.
	Version = "0.1.0"

	// Product is the application name shown to users.
	Product = "Beatline"
)
