package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupOneChannelPerPhase(t *testing.T) {

	require := require.New(t)

	triples, err := GroupPhases([]ChannelReading{
		channel(0, 0, 1, 100, 0, 0),
		channel(1, 1, 1, 200, 0, 0),
		channel(2, 2, 1, 300, 0, 0),
	})
	require.NoError(err)
	require.Len(triples, 1)
	require.Equal(3, triples[0].Present())
	for phase := 0; phase < PhaseCount; phase++ {
		require.Equal(phase, triples[0][phase].PhaseId)
	}
}

func TestGroupUnevenPhases(t *testing.T) {

	require := require.New(t)

	// two channels on L1, one on L2, none on L3
	triples, err := GroupPhases([]ChannelReading{
		channel(4, 0, 1, 40, 0, 0),
		channel(1, 0, 1, 10, 0, 0),
		channel(2, 1, 1, 20, 0, 0),
	})
	require.NoError(err)
	require.Len(triples, 2)

	require.Equal(1, triples[0][0].CtInput)
	require.Equal(2, triples[0][1].CtInput)
	require.Nil(triples[0][2])

	require.Equal(4, triples[1][0].CtInput)
	require.Nil(triples[1][1])
	require.Nil(triples[1][2])
}

func TestGroupInterleavedInput(t *testing.T) {

	require := require.New(t)

	// the same channels in any order must pair the same way
	ordered := []ChannelReading{
		channel(0, 0, 1, 1, 0, 0),
		channel(3, 0, 1, 2, 0, 0),
		channel(1, 1, 1, 3, 0, 0),
		channel(4, 1, 1, 4, 0, 0),
		channel(2, 2, 1, 5, 0, 0),
		channel(5, 2, 1, 6, 0, 0),
	}
	interleaved := []ChannelReading{
		ordered[5], ordered[0], ordered[2], ordered[4], ordered[1], ordered[3],
	}

	want, err := GroupPhases(ordered)
	require.NoError(err)
	got, err := GroupPhases(interleaved)
	require.NoError(err)

	require.Len(got, 2)
	for i := range want {
		for phase := 0; phase < PhaseCount; phase++ {
			require.Equal(*want[i][phase], *got[i][phase], "meter %d phase %d", i, phase)
		}
	}
	require.Equal(0, got[0][0].CtInput)
	require.Equal(3, got[1][0].CtInput)
}

func TestGroupDoesNotModifyInput(t *testing.T) {

	input := []ChannelReading{
		channel(2, 1, 1, 1, 0, 0),
		channel(1, 0, 1, 1, 0, 0),
	}
	_, err := GroupPhases(input)
	require.NoError(t, err)
	assert.Equal(t, 2, input[0].CtInput)
	assert.Equal(t, 1, input[1].CtInput)
}

func TestGroupEmpty(t *testing.T) {

	triples, err := GroupPhases(nil)
	require.NoError(t, err)
	assert.Empty(t, triples)
}

func TestGroupRejectsUnknownPhase(t *testing.T) {

	require := require.New(t)

	_, err := GroupPhases([]ChannelReading{
		channel(0, 0, 1, 1, 0, 0),
		channel(1, 3, 1, 1, 0, 0),
	})
	require.Error(err)

	var ve *ValidationError
	require.ErrorAs(err, &ve)
	require.Equal("/channelPowers/1/phaseId", ve.Field)

	_, err = GroupPhases([]ChannelReading{channel(0, -1, 1, 1, 0, 0)})
	require.True(IsValidationError(err))
}
