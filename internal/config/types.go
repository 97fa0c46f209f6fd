package config

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port                    int `mapstructure:"port"`
	ReadTimeout             int `mapstructure:"read_timeout"`
	WriteTimeout            int `mapstructure:"write_timeout"`
	IdleTimeout             int `mapstructure:"idle_timeout"`
	GracefulShutdownTimeout int `mapstructure:"graceful_shutdown_timeout"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// HTTPConfig holds settings for the outward-facing HTTP surface.
type HTTPConfig struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// SessionConfig holds auth session settings.
type SessionConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Session SessionConfig `mapstructure:"session"`
}

// Default returns a Config pre-filled with usable local-dev values;
// Load overwrites whatever the file and environment provide.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                    7521,
			ReadTimeout:             15,
			WriteTimeout:            30,
			IdleTimeout:             60,
			GracefulShutdownTimeout: 10,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "notesapp",
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: "http://localhost:5173",
			RateLimitRPS:       100,
			RateLimitBurst:     20,
		},
		Session: SessionConfig{
			TTLHours: 72,
		},
	}
}
