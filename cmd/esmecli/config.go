package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/nxsms/esme/esme"
)

// config is filled from defaults, then the TOML file, then ESME_*
// environment overrides, in that order.
type config struct {
	Smsc               string `toml:"smsc" env:"ESME_SMSC"`
	UseTls             bool   `toml:"use_tls" env:"ESME_USE_TLS"`
	SystemId           string `toml:"system_id" env:"ESME_SYSTEM_ID"`
	Password           string `toml:"password" env:"ESME_PASSWORD"`
	SystemType         string `toml:"system_type" env:"ESME_SYSTEM_TYPE"`
	Mode               string `toml:"mode" env:"ESME_MODE"`
	EnquireLinkSeconds int    `toml:"enquire_link_seconds" env:"ESME_ENQUIRE_LINK_SECONDS"`
	WindowSize         int    `toml:"window_size" env:"ESME_WINDOW_SIZE"`
	LogLevel           string `toml:"log_level" env:"ESME_LOG_LEVEL"`
	From               string `toml:"from" env:"ESME_FROM"`
	To                 string `toml:"to" env:"ESME_TO"`
	Text               string `toml:"text" env:"ESME_TEXT"`
}

func defaultConfig() config {
	return config{
		Mode:               "transceiver",
		EnquireLinkSeconds: 30,
		WindowSize:         100,
		LogLevel:           "info",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("load config env: %w", err)
	}

	if cfg.Smsc == "" {
		return cfg, fmt.Errorf("smsc is required")
	}
	if cfg.SystemId == "" {
		return cfg, fmt.Errorf("system_id is required")
	}
	if _, err := parseMode(cfg.Mode); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c config) EnquireLink() time.Duration {
	return time.Duration(c.EnquireLinkSeconds) * time.Second
}

func parseMode(s string) (esme.BindMode, error) {
	switch strings.ToLower(s) {
	case "", "transceiver", "trx":
		return esme.BindTransceiver, nil
	case "transmitter", "tx":
		return esme.BindTransmitter, nil
	case "receiver", "rx":
		return esme.BindReceiver, nil
	}
	return esme.BindTransceiver, fmt.Errorf("unknown bind mode: %q", s)
}
