package domain

const (
	ACTOR_ID_MASTER = "master"
	ACTOR_ID_MQTT   = "mqtt"
	ACTOR_ID_BRIDGE = "bridge"
)

// RealtimeMessage is a raw message received on the realtime subscription.
type RealtimeMessage struct {
	Topic   string
	Payload []byte
}

type PublishQuantityRequest struct {
	ActorRequestMixIn
	Update QuantityUpdate
}

type PublishQuantityResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

// RepublishRequest asks the bridge to publish every cached meter value again,
// sent after the MQTT session is (re)established.
type RepublishRequest struct {
	ActorRequestMixIn
}

type GetMetersRequest struct {
	ActorRequestMixIn
}

type GetMetersResponse struct {
	ActorResponseMixIn
	Meters []MeterSnapshot
	Stats  HandlerStats
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
