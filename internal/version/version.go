package version

// Set at build time via -ldflags.
var (
	AppName   = "voiceloom"
	Version   = "dev"
	BuildDate = "unknown"
)
