package config

import "fmt"

// QueueConfig describes the rabbitmq publisher. An empty URL disables
// publishing (the engine runs with a noop publisher).
type QueueConfig struct {
	Url      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return nil
	}
	if cfg.Exchange == "" {
		return fmt.Errorf("queue exchange is required when a queue url is set")
	}
	return nil
}

func (cfg *QueueConfig) Enabled() bool {
	return cfg.Url != ""
}
