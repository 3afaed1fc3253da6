package flow

import "sort"

var layouts = map[string]map[string]Point{
	"default": {
		NodeSolar:   {X: 0.5, Y: 0.12},
		NodeBattery: {X: 0.16, Y: 0.5},
		NodeHome:    {X: 0.5, Y: 0.5},
		NodeGrid:    {X: 0.84, Y: 0.5},
		NodeVehicle: {X: 0.5, Y: 0.86},
	},
	"compact": {
		NodeSolar:   {X: 0.25, Y: 0.2},
		NodeGrid:    {X: 0.75, Y: 0.2},
		NodeHome:    {X: 0.5, Y: 0.52},
		NodeBattery: {X: 0.25, Y: 0.84},
		NodeVehicle: {X: 0.75, Y: 0.84},
	},
}

// Layouts holds named node-position variants. Built-in layouts are always
// present; Override adds or replaces entries.
type Layouts struct {
	byName map[string]map[string]Point
}

// NewLayouts returns the built-in layouts.
func NewLayouts() *Layouts {
	l := &Layouts{byName: make(map[string]map[string]Point, len(layouts))}
	for name, pos := range layouts {
		l.Override(name, pos)
	}
	return l
}

// Override stores positions under name, clamping coordinates into [0,1].
func (l *Layouts) Override(name string, positions map[string]Point) {
	cp := make(map[string]Point, len(positions))
	for node, p := range positions {
		cp[node] = Point{X: clamp01(p.X), Y: clamp01(p.Y)}
	}
	l.byName[name] = cp
}

// Get returns a copy of the named layout.
func (l *Layouts) Get(name string) (map[string]Point, bool) {
	pos, ok := l.byName[name]
	if !ok {
		return nil, false
	}
	cp := make(map[string]Point, len(pos))
	for k, v := range pos {
		cp[k] = v
	}
	return cp, true
}

// Names lists layout names in sorted order.
func (l *Layouts) Names() []string {
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
