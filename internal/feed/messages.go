package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope wraps every stream message with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	TypePowerUpdate   = "power:update"
	TypeSensorReading = "sensor:reading"
	TypeBatteryUpdate = "battery:update"
)

// Sensor ids understood in sensor:reading messages.
const (
	SensorGridPower    = "grid_power"
	SensorPVPower      = "pv_power"
	SensorBatteryPower = "battery_power"
	SensorHomePower    = "home_power"
	SensorVehiclePower = "vehicle_power"
)

type SensorReadingPayload struct {
	SensorID  string  `json:"sensor_id"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"`
}

type BatteryUpdatePayload struct {
	BatteryPowerW float64 `json:"battery_power_w"`
	AdjustedGridW float64 `json:"adjusted_grid_w"`
	SoCPercent    float64 `json:"soc_percent"`
	Timestamp     string  `json:"timestamp"`
}

// NewEnvelope marshals payload under msgType.
func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func parseTimestamp(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// decodeMessage turns one stream message into the fields it updates.
// ok is false for message types that carry no power readings.
func decodeMessage(data []byte) (r Readings, ok bool, err error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return r, false, fmt.Errorf("decoding envelope: %w", err)
	}

	switch env.Type {
	case TypePowerUpdate:
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			return r, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		return r, true, nil

	case TypeSensorReading:
		var p SensorReadingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return r, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		r.Timestamp = parseTimestamp(p.Timestamp)
		v := Watts(p.Value)
		switch p.SensorID {
		case SensorGridPower:
			r.GridW = v
		case SensorPVPower:
			r.SolarW = v
		case SensorBatteryPower:
			r.BatteryW = v
		case SensorHomePower:
			r.HomeW = v
		case SensorVehiclePower:
			r.VehicleW = v
		default:
			return r, false, nil
		}
		return r, true, nil

	case TypeBatteryUpdate:
		var p BatteryUpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return r, false, fmt.Errorf("decoding %s: %w", env.Type, err)
		}
		r.Timestamp = parseTimestamp(p.Timestamp)
		r.BatteryW = Watts(p.BatteryPowerW)
		r.GridW = Watts(p.AdjustedGridW)
		return r, true, nil
	}
	return r, false, nil
}
