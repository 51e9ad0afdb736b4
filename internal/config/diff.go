package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; everything else
// (embedding backend, store DSN, metrics address) requires a restart.
type ConfigDiff struct {
	// LogLevelChanged is true when server.log_level changed; NewLogLevel
	// carries the new value.
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// MatchingChanged is true when any matching threshold changed; the new
	// block is applied to subsequent analyses.
	MatchingChanged bool
	NewMatching     MatchingConfig

	// LibraryChanged is true when the corpus directory or default translation
	// changed; the library must be refreshed.
	LibraryChanged bool
	NewLibrary     LibraryConfig

	// RestartRequired is true when a non-reloadable section changed.
	RestartRequired bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart, plus a flag for
// those that are not.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Matching != new.Matching {
		d.MatchingChanged = true
		d.NewMatching = new.Matching
	}

	if old.Library != new.Library {
		d.LibraryChanged = true
		d.NewLibrary = new.Library
	}

	if embeddingsChanged(old.Embeddings, new.Embeddings) ||
		old.Store != new.Store ||
		old.Server.MetricsAddr != new.Server.MetricsAddr {
		d.RestartRequired = true
	}

	return d
}

func embeddingsChanged(old, new EmbeddingsConfig) bool {
	if old.ProviderEntry != new.ProviderEntry {
		return true
	}
	if (old.Fallback == nil) != (new.Fallback == nil) {
		return true
	}
	return old.Fallback != nil && *old.Fallback != *new.Fallback
}
