package vigil

// Version is the release version, set at build time with
// -ldflags "-X github.com/aretw0/vigil.Version=...".
var Version = "dev"
