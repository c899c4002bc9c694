package version

// Version is overridden at build time with
// -ldflags "-X github.com/bnema/internode-usage-cli/internal/version.Version=v1.2.3".
var Version = "dev"

// APISpec is the provider API revision this client speaks.
const APISpec = "1.5"
