package config

import "time"

// APIConfig представляет конфигурацию удалённого API заметок.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"NOTESYNC_API_BASE_URL" env-default:"http://localhost:8080/api/v1"`
	HealthURL      string        `yaml:"health_url" env:"NOTESYNC_API_HEALTH_URL" env-default:"http://localhost:8080/actuator/health"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"NOTESYNC_API_REQUEST_TIMEOUT" env-default:"10s"`
}
