package config

import "time"

// SyncConfig представляет конфигурацию процесса синхронизации.
type SyncConfig struct {
	// PushTimeout ограничивает время одной попытки отправки заметки,
	// чтобы недоступная заметка не блокировала весь проход.
	PushTimeout time.Duration `yaml:"push_timeout" env:"NOTESYNC_SYNC_PUSH_TIMEOUT" env-default:"10s"`
	// MaxAttempts - количество попыток отправки одной заметки за проход.
	MaxAttempts int `yaml:"max_attempts" env:"NOTESYNC_SYNC_MAX_ATTEMPTS" env-default:"3"`
}
