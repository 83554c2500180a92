package swap

// Version is the release of the module. Overridden at link time with
// -ldflags "-X github.com/aretw0/swap.Version=...".
var Version = "0.1.0"
