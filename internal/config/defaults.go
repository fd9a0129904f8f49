package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"database": map[string]interface{}{
			"path": "~/.parentime/parentime.db",
		},
		"catalog": map[string]interface{}{
			"path": "",
		},
		"calendar": map[string]interface{}{
			"timezone": "",
		},
		"engine": map[string]interface{}{
			"horizon_months":            12,
			"activation_horizon_months": 24,
		},
		"notifications": map[string]interface{}{
			"hour":               9,
			"minute":             0,
			"cancel_on_complete": false,
		},
		"dispatcher": map[string]interface{}{
			"interval":       60,
			"digest_enabled": false,
			"digest_time":    "08:00",
		},
		"telegram": map[string]interface{}{
			"bot_token": "",
			"chat_id":   "",
		},
		"dashboard": map[string]interface{}{
			"max_now":      3,
			"max_upcoming": 3,
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.parentime/config.yaml"
}
