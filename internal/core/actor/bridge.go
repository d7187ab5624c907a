package actor

import (
	"fmt"

	"github.com/berfenger/smappee2mqtt/internal/config"
	"github.com/berfenger/smappee2mqtt/internal/core/domain"
	"github.com/berfenger/smappee2mqtt/internal/core/events"
	"github.com/berfenger/smappee2mqtt/internal/core/meter"
	"github.com/berfenger/smappee2mqtt/internal/core/port"
	. "github.com/berfenger/smappee2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"go.uber.org/zap"
)

const PROCESS_NAME = "smappee2mqtt"

// BridgeActor turns realtime messages into meter updates. It is the only
// actor touching the meter registry. The registry is created by the parent
// so that device instances survive a restart of the bridge.
type BridgeActor struct {
	config    *config.Config
	behavior  actor.Behavior
	mqttActor *actor.PID

	registry     *meter.Registry
	handler      *meter.Handler
	stats        domain.HandlerStats
	bridgeDevice domain.Device

	logger *zap.Logger
}

// actorPublisher forwards meter publishes to the MQTT actor and the actor
// system event stream.
type actorPublisher struct {
	root        *actor.RootContext
	mqttActor   *actor.PID
	eventStream *eventstream.EventStream
}

func (p *actorPublisher) PublishQuantity(update domain.QuantityUpdate) {
	p.root.Send(p.mqttActor, domain.PublishQuantityRequest{Update: update})
	p.eventStream.Publish(update)
}

// ensure interface compliance
var _ port.QuantityPublisher = (*actorPublisher)(nil)

// NewMeterRegistry creates the registry whose meters publish to the MQTT actor
// and to the event stream of system.
func NewMeterRegistry(config *config.Config, system *actor.ActorSystem, mqttActor *actor.PID) *meter.Registry {
	publisher := &actorPublisher{
		root:        system.Root,
		mqttActor:   mqttActor,
		eventStream: system.EventStream,
	}
	return meter.NewRegistry(meter.Identity{
		ServiceBase:    config.Smappee.ServiceBase,
		ProcessName:    PROCESS_NAME,
		ProcessVersion: versioninfo.Short(),
		Connection:     config.Smappee.Host,
	}, config.Smappee.DeviceInstanceBase, publisher)
}

func NewBridgeActor(config *config.Config, mqttActor *actor.PID, registry *meter.Registry, logger *zap.Logger) *BridgeActor {
	act := &BridgeActor{
		config:    config,
		mqttActor: mqttActor,
		registry:  registry,
		behavior:  actor.NewBehavior(),
		logger:    ActorLogger(domain.ACTOR_ID_BRIDGE, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *BridgeActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *BridgeActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("bridge@starting started")

		parser, err := meter.NewPayloadParser()
		if err != nil {
			panic(err)
		}

		state.handler = meter.NewHandler(state.registry, parser, state.logger)

		state.registry.OnCreate(func(m *meter.Meter) {
			state.announceMeter(ctx, m)
		})

		state.bridgeDevice = events.BridgeDevice(state.config.MQTT.BaseTopic)
		state.announceBridge(ctx)

		state.behavior.Become(state.DefaultReceive)
	default:
		state.logger.Debug("bridge@starting unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *BridgeActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.RealtimeMessage:
		state.stats.Received++
		published, err := state.handler.Handle(msg.Payload)
		if err != nil {
			state.stats.Dropped++
			state.logger.Debug("bridge@default message dropped", zap.String("topic", msg.Topic))
			return
		}
		state.stats.Published += uint64(published)
	case domain.RepublishRequest:
		state.announceBridge(ctx)
		published := 0
		for _, m := range state.registry.All() {
			state.announceMeterSensors(ctx, m)
			published += m.Republish()
		}
		state.logger.Info("bridge@default republished",
			zap.Int("meters", state.registry.Len()),
			zap.Int("values", published))
	case domain.GetMetersRequest:
		state.logger.Debug("bridge@default GetMetersRequest")
		meters := state.registry.All()
		snapshots := make([]domain.MeterSnapshot, 0, len(meters))
		for _, m := range meters {
			snapshots = append(snapshots, m.Snapshot())
		}
		ForRequest(msg).Respond(ctx, domain.GetMetersResponse{
			Meters: snapshots,
			Stats:  state.stats,
		})
	case domain.ActorHealthRequest:
		state.logger.Debug("bridge@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_BRIDGE,
			Healthy: true,
			State:   fmt.Sprintf("%d meters", state.registry.Len()),
		})
	default:
		state.logger.Debug("bridge@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *BridgeActor) announceMeter(ctx actor.Context, m *meter.Meter) {
	state.logger.Info("bridge@default new meter",
		zap.Int("group", m.GroupIndex()),
		zap.Int("instance", m.DeviceInstance()),
		zap.String("service", m.Service()))
	state.announceMeterSensors(ctx, m)
}

func (state *BridgeActor) announceBridge(ctx actor.Context) {
	if !state.config.MQTT.HADiscoveryEnable {
		return
	}
	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: events.BridgeSensors(state.bridgeDevice),
	})
}

func (state *BridgeActor) announceMeterSensors(ctx actor.Context, m *meter.Meter) {
	if !state.config.MQTT.HADiscoveryEnable {
		return
	}
	device := events.MeterDevice(m, state.bridgeDevice.Id)
	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: events.MeterSensors(device, m),
	})
}
