// File: cmd/version.go
package cmd

// Version is the application version, set at build time:
// go build -ldflags "-X github.com/xkilldash9x/trackrunner/cmd.Version=1.2.0"
var Version = "0.1.0"
