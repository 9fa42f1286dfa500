package manifest

import "embed"

// providerFS embeds the built-in provider manifests the way the predecessor's
// pkg/config embeds defaults.yaml ("//go:embed defaults.yaml"), generalized
// to one TOML file per provider.
//
//go:embed providers/*.toml
var providerFS embed.FS

// builtinProviderFiles lists the embedded files in a fixed, deterministic
// order so registry construction (and therefore dependency resolution
// ordering) never depends on directory-read ordering.
var builtinProviderFiles = []string{
	"providers/node.toml",
	"providers/python.toml",
	"providers/uv.toml",
	"providers/go.toml",
	"providers/rust.toml",
	"providers/java.toml",
	"providers/yarn.toml",
	"providers/pnpm.toml",
}
