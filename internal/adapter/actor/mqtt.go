package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/smappee2mqtt/internal/config"
	"github.com/berfenger/smappee2mqtt/internal/core/domain"
	"github.com/berfenger/smappee2mqtt/internal/mqtt"
	"github.com/berfenger/smappee2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config   *config.Config
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   *mqtt.MQTTClient
	logger   *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	Topic string
	Error error
}

func NewMQTTActor(config *config.Config, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		// paho callbacks run on their own goroutines, talk to the actor through the root context
		root := ctx.ActorSystem().Root
		self := ctx.Self()

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
			root.Send(self, MQTTConnected{})
		}, func(_ pahomqtt.Client, err error) {
			root.Send(self, MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server, success is reported by the OnConnect handler
		state.client.Connect(func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")
		state.onConnected(ctx)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Info("mqtt@starting subscribed", zap.String("topic", state.client.RealtimeTopic()))
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
		// a new session may come with an empty retained store
		ctx.Send(ctx.Parent(), domain.RepublishRequest{})
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: false,
			State:   "connecting",
		})
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: state.client.IsConnected(),
			State:   "idle",
		})
	case MQTTConnected:
		// broker session was re-established, subscriptions must be renewed
		state.logger.Info("mqtt@default reconnected")
		state.onConnected(ctx)
	case MQTTSubscribed:
		state.logger.Debug("mqtt@default subscribed")
		ctx.Send(ctx.Parent(), domain.RepublishRequest{})
	case domain.RealtimeMessage:
		// route realtime message to parent
		state.logger.Debug("mqtt@default realtime message", zap.String("topic", msg.Topic), zap.Int("size", len(msg.Payload)))
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishQuantityRequest:
		state.publishQuantity(ctx, msg)
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@default PublishHADiscovery", zap.Int("sensors", len(msg.Sensors)))
		err := state.PublishHomeAssistantDiscovery(msg.Sensors)
		if err != nil {
			state.logger.Error("mqtt@default PublishHADiscovery error", zap.Error(err))
		}
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("mqtt@default could not publish a message", zap.String("topic", msg.Topic), zap.Error(msg.Error))
		}
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) onConnected(ctx actor.Context) {
	root := ctx.ActorSystem().Root
	self := ctx.Self()

	state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, mqtt.QOS_AT_MOST_ONCE, true, func(error) {}, 500*time.Millisecond)

	// subscribe to the realtime topic
	state.client.SubscribeToRealtimeTopic(func(_ pahomqtt.Client, m pahomqtt.Message) {
		root.Send(self, domain.RealtimeMessage{
			Topic:   m.Topic(),
			Payload: m.Payload(),
		})
	}, func(err error) {
		if err != nil {
			root.Send(self, MQTTConnectionLost{Error: err})
		} else {
			root.Send(self, MQTTSubscribed{})
		}
	}, 2*time.Second)
}

func (state *MQTTActor) publishQuantity(ctx actor.Context, req domain.PublishQuantityRequest) {
	topic := state.client.ServicePathTopic(req.Update.Service, req.Update.Path)
	payload, err := mqtt.QuantityPayload(req.Update.Value)
	if err != nil {
		state.logger.Error("mqtt@publish could not encode quantity", zap.String("topic", topic), zap.Error(err))
		return
	}
	state.logger.Sugar().Debugf("mqtt@publish: quantity publish %s => %s", topic, payload)

	root := ctx.ActorSystem().Root
	self := ctx.Self()
	replyTo := actorutil.ForRequest(req).ReplyTo(ctx)
	state.client.Publish(topic, payload, mqtt.QOS_AT_MOST_ONCE, true, func(err error) {
		root.Send(self, publishResult{Topic: topic, Error: err})
		if replyTo != nil {
			root.Send(replyTo, domain.PublishQuantityResponse{ActorResponseMixIn: domain.FailedResponse(err)})
		}
	}, 5*time.Second)
}

func (state *MQTTActor) PublishHomeAssistantDiscovery(sensors []domain.GenericSensor) error {
	for i := range sensors {
		msg := mqtt.GenericSensorToHADiscoveryMessage(state.client, sensors[i])
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		topic := mqtt.HADiscoverySensorTopic(state.client.HADiscoveryTopic(), sensors[i])
		state.client.Publish(topic, payload, mqtt.QOS_AT_MOST_ONCE, true, func(error) {}, 1*time.Second)
	}
	return nil
}

func (state *MQTTActor) stop() {
	if state.client == nil {
		return
	}
	state.logger.Debug("mqtt: disconnect")
	if state.client.IsConnected() {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, mqtt.QOS_AT_MOST_ONCE, true, func(error) {}, 500*time.Millisecond)
	}
	state.client.Disconnect(500 * time.Millisecond)
}

// Dummy actor, answers health checks and accepts publish requests without a broker
func NewTestMQTTActor(config *config.Config, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   config,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@dummy ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.RealtimeMessage:
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishQuantityRequest:
		if msg.ReplyToRef != nil {
			ctx.Send((*actor.PID)(msg.ReplyToRef), domain.PublishQuantityResponse{})
		}
	}
}
