package meter

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/realtime.json
var realtimeSchemaJSON string

const realtimeSchemaURL = "realtime.json"

type VoltageReading struct {
	PhaseId int     `json:"phaseId"`
	Voltage float64 `json:"voltage"`
}

type ChannelReading struct {
	// CtInput identifies the current transformer input of the channel
	CtInput int     `json:"ctInput"`
	PhaseId int     `json:"phaseId"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
	// cumulative energy in joules
	ImportEnergy float64 `json:"importEnergy"`
	ExportEnergy float64 `json:"exportEnergy"`
}

type Payload struct {
	Voltages        []VoltageReading `json:"voltages"`
	ChannelPowers   []ChannelReading `json:"channelPowers"`
	FirmwareVersion *string          `json:"firmwareVersion"`
	SerialNr        *string          `json:"serialNr"`
}

// VoltageByPhase maps each phase to its voltage. The last reading of a phase
// wins. Readings of phases no line can carry are ignored.
func (p *Payload) VoltageByPhase() map[int]float64 {
	voltages := make(map[int]float64, len(p.Voltages))
	for _, v := range p.Voltages {
		if v.PhaseId < 0 || v.PhaseId >= PhaseCount {
			continue
		}
		voltages[v.PhaseId] = v.Voltage
	}
	return voltages
}

type PayloadParser struct {
	schema *jsonschema.Schema
}

func NewPayloadParser() (*PayloadParser, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource(realtimeSchemaURL,
		strings.NewReader(realtimeSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(realtimeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &PayloadParser{schema: schema}, nil
}

// Parse decodes and validates a realtime message. It returns an error wrapping
// ErrMalformedPayload for invalid JSON and a *ValidationError when the
// document does not match the realtime schema.
func (p *PayloadParser) Parse(data []byte) (*Payload, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := p.schema.Validate(doc); err != nil {
		return nil, schemaValidationError(err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return &payload, nil
}

// schemaValidationError reduces a schema error to its first leaf cause.
func schemaValidationError(err error) *ValidationError {
	var sve *jsonschema.ValidationError
	if !errors.As(err, &sve) {
		return &ValidationError{Reason: err.Error()}
	}
	for len(sve.Causes) > 0 {
		sve = sve.Causes[0]
	}
	return &ValidationError{
		Field:  sve.InstanceLocation,
		Reason: sve.Message,
	}
}
