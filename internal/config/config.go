package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	DEFAULT_SERVICE_BASE   = "com.victronenergy.grid"
	DEFAULT_REALTIME_TOPIC = "servicelocation/+/realtime"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig    `mapstructure:"mqtt"`
	Smappee  SmappeeConfig `mapstructure:"smappee"`
	Port     uint          `mapstructure:"port"`
	HttpLog  bool          `mapstructure:"http_log"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

type SmappeeConfig struct {
	// Host identifies the energy monitor, published as /Management/Connection
	Host               string `mapstructure:"host"`
	ServiceBase        string `mapstructure:"service_base"`
	Topic              string `mapstructure:"topic"`
	DeviceInstanceBase int    `mapstructure:"device_instance_base"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// CheckSubscriptionTopic validates an MQTT topic filter. '+' must fill a whole
// level and '#' may only appear as the last level.
func CheckSubscriptionTopic(topic string) error {
	if topic == "" {
		return errors.New("empty subscription topic")
	}
	levels := strings.Split(topic, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return errors.New("'#' must be the last level of a subscription topic")
			}
		case strings.ContainsAny(level, "+#") && level != "+":
			return errors.New("wildcards must occupy a whole topic level")
		}
	}
	return nil
}

// CheckServiceBase validates a dotted service name prefix such as
// com.victronenergy.grid.
func CheckServiceBase(base string) error {
	serviceBaseRegexp := regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)
	if !serviceBaseRegexp.MatchString(base) {
		return errors.New("invalid service base. expected a dotted name like com.victronenergy.grid")
	}
	return nil
}
