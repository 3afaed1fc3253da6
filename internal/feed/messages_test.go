package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessage_PowerUpdate(t *testing.T) {
	msg, err := NewEnvelope(TypePowerUpdate, Readings{SolarW: Watts(2500), HomeW: Watts(900)})
	require.NoError(t, err)

	r, ok, err := decodeMessage(msg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2500.0, Value(r.SolarW))
	assert.Equal(t, 900.0, Value(r.HomeW))
	assert.Nil(t, r.GridW)
}

func TestDecodeMessage_SensorReading(t *testing.T) {
	msg, err := NewEnvelope(TypeSensorReading, SensorReadingPayload{
		SensorID:  SensorGridPower,
		Value:     -640,
		Unit:      "W",
		Timestamp: "2024-11-21T12:00:00Z",
	})
	require.NoError(t, err)

	r, ok, err := decodeMessage(msg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -640.0, Value(r.GridW))
	assert.Equal(t, time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC), r.Timestamp)
}

func TestDecodeMessage_UnknownSensor(t *testing.T) {
	msg, err := NewEnvelope(TypeSensorReading, SensorReadingPayload{SensorID: "oven", Value: 2000})
	require.NoError(t, err)

	_, ok, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeMessage_BatteryUpdate(t *testing.T) {
	msg, err := NewEnvelope(TypeBatteryUpdate, BatteryUpdatePayload{
		BatteryPowerW: -1000,
		AdjustedGridW: 1400,
		SoCPercent:    55,
	})
	require.NoError(t, err)

	r, ok, err := decodeMessage(msg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -1000.0, Value(r.BatteryW))
	assert.Equal(t, 1400.0, Value(r.GridW))
	assert.True(t, r.Timestamp.IsZero())
}

func TestDecodeMessage_Ignored(t *testing.T) {
	msg, err := NewEnvelope("sim:state", nil)
	require.NoError(t, err)

	_, ok, err := decodeMessage(msg)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = decodeMessage([]byte("not json"))
	assert.Error(t, err)
}
