package version

// Version is the current CLI version.
// This will be overridden during build time using ldflags.
var Version = "dev"
