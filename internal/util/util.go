package util

import (
	"github.com/berfenger/smappee2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "smappee",
			HADiscoveryTopic: "homeassistant",
		},
		Smappee: config.SmappeeConfig{
			Host:               "smappee.local",
			ServiceBase:        config.DEFAULT_SERVICE_BASE,
			Topic:              config.DEFAULT_REALTIME_TOPIC,
			DeviceInstanceBase: 0,
		},
		Port: 8080,
	}
}
