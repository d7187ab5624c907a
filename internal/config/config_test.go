package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckMQTTTopic(t *testing.T) {

	assert := assert.New(t)

	topic, err := CheckMQTTTopic("Smappee_Bridge")
	assert.NoError(err)
	assert.Equal("smappee_bridge", topic)

	_, err = CheckMQTTTopic("smappee/bridge")
	assert.Error(err)
}

func TestCheckSubscriptionTopic(t *testing.T) {

	assert := assert.New(t)

	assert.NoError(CheckSubscriptionTopic(DEFAULT_REALTIME_TOPIC))
	assert.NoError(CheckSubscriptionTopic("servicelocation/#"))
	assert.NoError(CheckSubscriptionTopic("servicelocation/abc/realtime"))

	assert.Error(CheckSubscriptionTopic(""))
	assert.Error(CheckSubscriptionTopic("servicelocation/#/realtime"))
	assert.Error(CheckSubscriptionTopic("servicelocation/a+/realtime"))
}

func TestCheckServiceBase(t *testing.T) {

	assert := assert.New(t)

	assert.NoError(CheckServiceBase(DEFAULT_SERVICE_BASE))
	assert.NoError(CheckServiceBase("com.victronenergy.pvinverter"))

	assert.Error(CheckServiceBase("grid"))
	assert.Error(CheckServiceBase("com..grid"))
	assert.Error(CheckServiceBase("com.victron energy.grid"))
}
