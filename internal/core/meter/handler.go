package meter

import (
	"go.uber.org/zap"
)

// Handler applies realtime messages to the meters of a registry.
type Handler struct {
	registry *Registry
	parser   *PayloadParser
	logger   *zap.Logger
}

func NewHandler(registry *Registry, parser *PayloadParser, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		parser:   parser,
		logger:   logger,
	}
}

// Handle processes one realtime message and returns the number of measurement
// values it published, identity paths of new meters not included. Invalid
// messages are logged and dropped without touching any meter.
func (h *Handler) Handle(data []byte) (int, error) {
	payload, err := h.parser.Parse(data)
	if err != nil {
		h.logger.Warn("dropping realtime message", zap.Error(err))
		return 0, err
	}

	triples, err := GroupPhases(payload.ChannelPowers)
	if err != nil {
		h.logger.Warn("dropping realtime message", zap.Error(err))
		return 0, err
	}

	voltages := payload.VoltageByPhase()

	published := 0
	for i, triple := range triples {
		m := h.registry.Get(i)
		published += m.Apply(ComputeReadings(triple, voltages))
	}

	for _, m := range h.registry.All() {
		if m.SetQuantity(PathFirmware, payload.FirmwareVersion) {
			published++
		}
		if m.SetQuantity(PathSerial, payload.SerialNr) {
			published++
		}
	}

	h.logger.Debug("realtime message applied",
		zap.Int("meters", len(triples)),
		zap.Int("published", published))
	return published, nil
}
