package flow

import "math"

// Flows is a snapshot of the node power readings a path list is derived from.
// Battery is positive while discharging, Grid is positive while importing.
type Flows struct {
	SolarW   float64
	BatteryW float64
	GridW    float64
	HomeW    float64
	VehicleW float64
}

// Palette assigns a colour string to each source node.
type Palette struct {
	Solar   string
	Battery string
	Grid    string
	Home    string
	Vehicle string
}

// DefaultPalette returns the stock node colours.
func DefaultPalette() Palette {
	return Palette{
		Solar:   "rgb(251,191,36)",
		Battery: "rgb(52,211,153)",
		Grid:    "rgb(248,113,113)",
		Home:    "rgb(96,165,250)",
		Vehicle: "rgb(167,139,250)",
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// PathsFromFlows splits the node readings into directed paths. Solar serves
// the home first, then battery charging, then export. Whatever the battery
// charges beyond solar comes from the grid. The order of the returned slice
// is fixed so layouts draw consistently.
func PathsFromFlows(f Flows, palette Palette, thresholdW float64) []Path {
	solar := math.Max(0, finite(f.SolarW))
	battery := finite(f.BatteryW)
	grid := finite(f.GridW)
	home := math.Max(0, finite(f.HomeW))
	vehicle := math.Max(0, finite(f.VehicleW))

	solarToHome := math.Min(solar, home)
	spare := solar - solarToHome

	charging := math.Max(0, -battery)
	solarToBattery := math.Min(spare, charging)
	spare -= solarToBattery
	gridToBattery := math.Max(0, charging-solarToBattery)

	solarToGrid := math.Min(spare, math.Max(0, -grid))
	batteryToHome := math.Max(0, battery)
	gridToHome := math.Max(0, grid-gridToBattery)

	mk := func(from, to, color string, w float64) Path {
		return Path{From: from, To: to, Color: color, Active: w > 0 && w >= thresholdW, PowerW: w}
	}
	return []Path{
		mk(NodeSolar, NodeHome, palette.Solar, solarToHome),
		mk(NodeSolar, NodeBattery, palette.Solar, solarToBattery),
		mk(NodeSolar, NodeGrid, palette.Solar, solarToGrid),
		mk(NodeBattery, NodeHome, palette.Battery, batteryToHome),
		mk(NodeGrid, NodeHome, palette.Grid, gridToHome),
		mk(NodeGrid, NodeBattery, palette.Grid, gridToBattery),
		mk(NodeHome, NodeVehicle, palette.Vehicle, vehicle),
	}
}
