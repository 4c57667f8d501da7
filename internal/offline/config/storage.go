package config

import (
	"strconv"
	"time"
)

// StorageConfig представляет конфигурацию долговременного key-value хранилища.
type StorageConfig struct {
	Host            string        `yaml:"host" env:"NOTESYNC_STORAGE_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"NOTESYNC_STORAGE_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"NOTESYNC_STORAGE_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"NOTESYNC_STORAGE_DB" env-default:"0"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"NOTESYNC_STORAGE_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"NOTESYNC_STORAGE_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"NOTESYNC_STORAGE_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"NOTESYNC_STORAGE_POOL_SIZE" env-default:"10"`
	MinIdle         int           `yaml:"min_idle" env:"NOTESYNC_STORAGE_MIN_IDLE" env-default:"2"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"NOTESYNC_STORAGE_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"NOTESYNC_STORAGE_MAX_CONN_LIFETIME" env-default:"1h"`
}

// GetAddressString возвращает адрес хранилища строкой.
func (c *StorageConfig) GetAddressString() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
