package lispkit

// Version and BuildDate are overridden at link time:
//
//	go build -ldflags "-X github.com/arhebs/lispkit-compiler.Version=v0.3.0"
var (
	Version   = "v0.3.0-dev"
	BuildDate = "unknown"
)
