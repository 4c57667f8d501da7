package config

import "time"

// ConnectivityConfig представляет конфигурацию монитора связности.
type ConnectivityConfig struct {
	ProbeInterval time.Duration `yaml:"probe_interval" env:"NOTESYNC_CONNECTIVITY_PROBE_INTERVAL" env-default:"5s"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" env:"NOTESYNC_CONNECTIVITY_PROBE_TIMEOUT" env-default:"3s"`
}
