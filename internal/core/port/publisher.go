package port

import "github.com/berfenger/smappee2mqtt/internal/core/domain"

// QuantityPublisher receives every value a meter decides to publish.
type QuantityPublisher interface {
	PublishQuantity(update domain.QuantityUpdate)
}
