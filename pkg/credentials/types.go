package credentials

// Credentials represents the stored API credentials in credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for a single provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}

// Source describes where a resolved key came from.
type Source string

const (
	SourceFlag Source = "flag"
	SourceFile Source = "credentials.toml"
)

// Resolved is the outcome of Manager.Resolve.
type Resolved struct {
	Key    string
	Source Source
}

// Found reports whether a key was resolved.
func (r Resolved) Found() bool {
	return r.Key != ""
}
