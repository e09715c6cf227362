package config

const (
	defaultSettingsDB          = "~/.local/share/shotmaster/settings.db"
	defaultProviderName        = "kling"
	defaultProviderBaseURL     = "https://api-singapore.klingai.com"
	defaultProviderModel       = "kling-v2-6"
	defaultProviderTimeout     = 60
	defaultPollingMaxRetries   = 30
	defaultPollingDelaySeconds = 15
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SettingsDB: defaultSettingsDB,
		},
		Provider: Provider{
			Name:           defaultProviderName,
			BaseURL:        defaultProviderBaseURL,
			Model:          defaultProviderModel,
			TimeoutSeconds: defaultProviderTimeout,
		},
		Polling: Polling{
			MaxRetries:   defaultPollingMaxRetries,
			DelaySeconds: defaultPollingDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
