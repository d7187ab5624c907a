package meter

import (
	"github.com/berfenger/smappee2mqtt/internal/core/domain"
)

type recordingPublisher struct {
	updates []domain.QuantityUpdate
}

func (r *recordingPublisher) PublishQuantity(update domain.QuantityUpdate) {
	r.updates = append(r.updates, update)
}

func (r *recordingPublisher) count() int {
	return len(r.updates)
}

// published returns the paths published for service since the update at index from.
func (r *recordingPublisher) published(service string, from int) map[string]any {
	values := make(map[string]any)
	for _, u := range r.updates[from:] {
		if u.Service == service {
			values[u.Path] = u.Value
		}
	}
	return values
}

func testIdentity() Identity {
	return Identity{
		ServiceBase:    "com.victronenergy.grid",
		ProcessName:    "smappee2mqtt",
		ProcessVersion: "test",
		Connection:     "smappee.local",
	}
}

func channel(ctInput, phase int, current, power, importJ, exportJ float64) ChannelReading {
	return ChannelReading{
		CtInput:      ctInput,
		PhaseId:      phase,
		Current:      current,
		Power:        power,
		ImportEnergy: importJ,
		ExportEnergy: exportJ,
	}
}
