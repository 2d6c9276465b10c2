package version

// Version is the current version of wash2gather.
// This value can be overridden at build time using:
//
//	go build -ldflags="-X 'github.com/Alaminislam-stack/wash2gather/internal/version.Version=v1.0.0'"
var Version = "dev"
