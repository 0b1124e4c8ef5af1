package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/shabd/data/db/words.db"
	}
	if cfg.Storage.PendingPath == "" {
		cfg.Storage.PendingPath = "/usr/local/var/shabd/data/unvalidated.json"
	}
	if cfg.Storage.SearchIndexPath == "" {
		cfg.Storage.SearchIndexPath = "/usr/local/var/shabd/data/indices/words"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en", "es", "hi"}
	}
	if cfg.Sync.IntervalSeconds == 0 {
		cfg.Sync.IntervalSeconds = 300
	}
	if cfg.Sync.MaxConcurrent == 0 {
		cfg.Sync.MaxConcurrent = 4
	}
	if cfg.Translate.Endpoint == "" {
		cfg.Translate.Endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if cfg.Translate.TimeoutSeconds == 0 {
		cfg.Translate.TimeoutSeconds = 10
	}
	if cfg.Translate.RetryAttempts == 0 {
		cfg.Translate.RetryAttempts = 3
	}
	if cfg.Translate.RetryDelayMS == 0 {
		cfg.Translate.RetryDelayMS = 1000
	}
	if cfg.Connectivity.Address == "" {
		cfg.Connectivity.Address = "8.8.8.8:53"
	}
	if cfg.Connectivity.TimeoutSeconds == 0 {
		cfg.Connectivity.TimeoutSeconds = 3
	}
}
