package types

// Version is the application version, overwritten at build time by ldflags
var Version = "dev"
