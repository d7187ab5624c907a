package meter

import "math"

const JoulesPerKWh = 3600000

// LineValues are the values published for one line of a meter.
type LineValues struct {
	Current       float64
	Power         float64
	Voltage       *float64
	EnergyForward float64
	EnergyReverse float64
}

// Readings are the values of one virtual meter computed from one message.
// Lines without a channel are nil.
type Readings struct {
	Lines         [PhaseCount]*LineValues
	Power         float64
	EnergyForward float64
	EnergyReverse float64
}

// JoulesToKWh converts joules to kWh rounded to one decimal.
func JoulesToKWh(joules float64) float64 {
	return math.Round(joules/JoulesPerKWh*10) / 10
}

// ComputeReadings derives line values and totals for one triple. Total energy
// is summed in joules and converted once.
func ComputeReadings(triple PhaseTriple, voltages map[int]float64) Readings {
	var r Readings
	var importJoules, exportJoules float64

	for phase, c := range triple {
		if c == nil {
			continue
		}
		line := &LineValues{
			Current:       c.Current,
			Power:         c.Power,
			EnergyForward: JoulesToKWh(c.ImportEnergy),
			EnergyReverse: JoulesToKWh(c.ExportEnergy),
		}
		if v, ok := voltages[phase]; ok {
			line.Voltage = &v
		}
		r.Lines[phase] = line

		r.Power += c.Power
		importJoules += c.ImportEnergy
		exportJoules += c.ExportEnergy
	}

	r.EnergyForward = JoulesToKWh(importJoules)
	r.EnergyReverse = JoulesToKWh(exportJoules)
	return r
}
