package meter

import (
	"cmp"
	"fmt"
	"slices"
)

// PhaseCount is the number of lines of a virtual meter.
const PhaseCount = 3

// PhaseTriple holds the channel of each line of one virtual meter. A nil slot
// means no channel was paired on that line.
type PhaseTriple [PhaseCount]*ChannelReading

// Present reports how many lines carry a channel.
func (t PhaseTriple) Present() int {
	n := 0
	for _, c := range t {
		if c != nil {
			n++
		}
	}
	return n
}

// GroupPhases pairs single-phase channels into virtual three-phase meters.
// Channels are ordered by phase and CT input, bucketed per phase and zipped
// positionally: the i-th channel of every phase belongs to meter i.
func GroupPhases(channels []ChannelReading) ([]PhaseTriple, error) {
	for i, c := range channels {
		if c.PhaseId < 0 || c.PhaseId >= PhaseCount {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("/channelPowers/%d/phaseId", i),
				Reason: fmt.Sprintf("phase %d out of range", c.PhaseId),
			}
		}
	}

	sorted := slices.Clone(channels)
	slices.SortStableFunc(sorted, func(a, b ChannelReading) int {
		if a.PhaseId != b.PhaseId {
			return cmp.Compare(a.PhaseId, b.PhaseId)
		}
		return cmp.Compare(a.CtInput, b.CtInput)
	})

	var buckets [PhaseCount][]*ChannelReading
	for i := range sorted {
		c := &sorted[i]
		buckets[c.PhaseId] = append(buckets[c.PhaseId], c)
	}

	meters := 0
	for _, b := range buckets {
		meters = max(meters, len(b))
	}

	triples := make([]PhaseTriple, meters)
	for phase, b := range buckets {
		for i, c := range b {
			triples[i][phase] = c
		}
	}
	return triples, nil
}
