package main

import "fmt"

// material describes the thermal properties of one building material.
// Specific heat and conductivity vary with temperature through ramps;
// density and emissivity are scalars.
type material struct {
	specificHeat ramp
	conductivity ramp
	density      float32
	emissivity   float32
}

// materialList keeps parsed materials together with their input-file names.
type materialList struct {
	names     []string
	materials []material
}

// findIndex returns the position of the material registered under name.
func (l *materialList) findIndex(name string) (int, bool) {
	for i, n := range l.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// addFromProperties builds a material from record properties, resolving ramp
// references against the parsed ramps. Specific heat arrives in kJ/(kg·K)
// and is scaled to J/(kg·K) here.
func (l *materialList) addFromProperties(props []property, ramps *rampList) error {
	var (
		name         string
		specificHeat *ramp
		conductivity *ramp
		density      *float32
		emissivity   *float32
	)
	for _, p := range props {
		switch p.key {
		case "ID":
			name = p.value
		case "SPECIFIC_HEAT_RAMP":
			r, ok := ramps.find(p.value)
			if !ok {
				return fmt.Errorf("no RAMP with ID %q", p.value)
			}
			r = r.multiply(1000.0)
			specificHeat = &r
		case "SPECIFIC_HEAT":
			v, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing SPECIFIC_HEAT: %w", err)
			}
			r := constantRamp(v * 1000.0)
			specificHeat = &r
		case "CONDUCTIVITY_RAMP":
			r, ok := ramps.find(p.value)
			if !ok {
				return fmt.Errorf("no RAMP with ID %q", p.value)
			}
			conductivity = &r
		case "CONDUCTIVITY":
			v, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing CONDUCTIVITY: %w", err)
			}
			r := constantRamp(v)
			conductivity = &r
		case "DENSITY":
			v, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing DENSITY: %w", err)
			}
			density = &v
		case "EMISSIVITY":
			v, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing EMISSIVITY: %w", err)
			}
			emissivity = &v
		}
	}
	if name == "" || specificHeat == nil || conductivity == nil || density == nil || emissivity == nil {
		return fmt.Errorf("material record incomplete: ID=%v SPECIFIC_HEAT(_RAMP)=%v CONDUCTIVITY(_RAMP)=%v DENSITY=%v EMISSIVITY=%v",
			name != "", specificHeat != nil, conductivity != nil, density != nil, emissivity != nil)
	}
	if *density <= 0 {
		return fmt.Errorf("material %q: density must be positive, got %v", name, *density)
	}
	l.names = append(l.names, name)
	l.materials = append(l.materials, material{
		specificHeat: *specificHeat,
		conductivity: *conductivity,
		density:      *density,
		emissivity:   *emissivity,
	})
	return nil
}
