package domain

// QuantityUpdate is a single changed value of one quantity path of a meter service.
type QuantityUpdate struct {
	Service        string `json:"service"`
	DeviceInstance int    `json:"deviceInstance"`
	Path           string `json:"path"`
	Value          any    `json:"value"`
}

// MeterSnapshot is the last published state of a virtual meter.
type MeterSnapshot struct {
	GroupIndex     int            `json:"groupIndex"`
	DeviceInstance int            `json:"deviceInstance"`
	Service        string         `json:"service"`
	Values         map[string]any `json:"values"`
}

// HandlerStats counts realtime messages seen by the bridge.
type HandlerStats struct {
	Received  uint64 `json:"received"`
	Dropped   uint64 `json:"dropped"`
	Published uint64 `json:"published"`
}
