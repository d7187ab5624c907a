package main

import (
	"testing"

	"github.com/berfenger/smappee2mqtt/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
}

func TestInitConfigFromEnv(t *testing.T) {

	require := require.New(t)

	resetConfig(t)
	t.Setenv("SMAPPEE_MQTT_HOST", "broker.local")
	t.Setenv("SMAPPEE_MQTT_PORT", "1884")
	t.Setenv("SMAPPEE_MQTT_BASE_TOPIC", "Energy")
	t.Setenv("SMAPPEE_MQTT_HA_DISCOVERY_ENABLE", "true")
	t.Setenv("SMAPPEE_SMAPPEE_HOST", "smappee.local")
	t.Setenv("SMAPPEE_SMAPPEE_DEVICE_INSTANCE_BASE", "40")
	t.Setenv("SMAPPEE_LOG_LEVEL", "debug")

	cfg, err := initConfig()
	require.NoError(err)

	assert.Equal(t, "broker.local", cfg.MQTT.Host)
	assert.Equal(t, 1884, cfg.MQTT.Port)
	assert.Equal(t, "energy", cfg.MQTT.BaseTopic)
	assert.True(t, cfg.MQTT.HADiscoveryEnable)
	assert.Equal(t, "homeassistant", cfg.MQTT.HADiscoveryTopic)
	assert.Equal(t, "smappee.local", cfg.Smappee.Host)
	assert.Equal(t, 40, cfg.Smappee.DeviceInstanceBase)
	assert.Equal(t, config.DEFAULT_SERVICE_BASE, cfg.Smappee.ServiceBase)
	assert.Equal(t, config.DEFAULT_REALTIME_TOPIC, cfg.Smappee.Topic)
	assert.Equal(t, zap.DebugLevel, cfg.LogLevel)
	assert.EqualValues(t, 8080, cfg.Port)
}

func TestInitConfigPortAlias(t *testing.T) {

	resetConfig(t)
	t.Setenv("SMAPPEE_MQTT_HOST", "broker.local")
	t.Setenv("SMAPPEE_SMAPPEE_HOST", "smappee.local")
	t.Setenv("PORT", "9090")

	cfg, err := initConfig()
	require.NoError(t, err)
	assert.EqualValues(t, 9090, cfg.Port)
}

func TestInitConfigErrors(t *testing.T) {

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing mqtt host", map[string]string{"SMAPPEE_SMAPPEE_HOST": "smappee.local"}},
		{"missing smappee host", map[string]string{"SMAPPEE_MQTT_HOST": "broker.local"}},
		{"bad base topic", map[string]string{"SMAPPEE_MQTT_HOST": "b", "SMAPPEE_SMAPPEE_HOST": "s", "SMAPPEE_MQTT_BASE_TOPIC": "a/b"}},
		{"bad subscription topic", map[string]string{"SMAPPEE_MQTT_HOST": "b", "SMAPPEE_SMAPPEE_HOST": "s", "SMAPPEE_SMAPPEE_TOPIC": "a/b#"}},
		{"bad service base", map[string]string{"SMAPPEE_MQTT_HOST": "b", "SMAPPEE_SMAPPEE_HOST": "s", "SMAPPEE_SMAPPEE_SERVICE_BASE": "grid"}},
		{"negative instance base", map[string]string{"SMAPPEE_MQTT_HOST": "b", "SMAPPEE_SMAPPEE_HOST": "s", "SMAPPEE_SMAPPEE_DEVICE_INSTANCE_BASE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := initConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
