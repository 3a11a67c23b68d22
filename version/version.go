package version

// Version is overridden at build time with
// -ldflags "-X github.com/alapierre/sortjson/version.Version=..."
var Version = "dev"
