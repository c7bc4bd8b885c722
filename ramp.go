package main

// rampPoint is a single breakpoint of a piecewise-linear property table.
type rampPoint struct {
	temperature float32
	value       float32
}

// ramp is a piecewise-linear temperature-dependent property table. The
// breakpoints are assumed to ascend in temperature; construction does not
// verify this and out-of-order tables interpolate incorrectly.
type ramp struct {
	points []rampPoint
}

// constantRamp wraps a single fixed value as a one-point ramp.
func constantRamp(value float32) ramp {
	return ramp{points: []rampPoint{{temperature: 20.0, value: value}}}
}

// calc evaluates the table at the given temperature: the first value below
// the first breakpoint, the last value above the last breakpoint, linear
// interpolation in between.
func (r ramp) calc(temperature float32) float32 {
	if temperature <= r.points[0].temperature {
		return r.points[0].value
	}
	for i := 1; i < len(r.points); i++ {
		p1 := r.points[i]
		if temperature < p1.temperature {
			p0 := r.points[i-1]
			return p0.value + (p1.value-p0.value)/(p1.temperature-p0.temperature)*(temperature-p0.temperature)
		}
	}
	return r.points[len(r.points)-1].value
}

// multiply returns a new ramp with every value scaled by factor. Used to
// convert input units, e.g. specific heat from kJ/(kg·K) to J/(kg·K).
func (r ramp) multiply(factor float32) ramp {
	points := make([]rampPoint, len(r.points))
	for i, p := range r.points {
		points[i] = rampPoint{temperature: p.temperature, value: p.value * factor}
	}
	return ramp{points: points}
}

// rampList keeps parsed ramps together with their input-file names.
type rampList struct {
	names []string
	ramps []ramp
}

// add appends one breakpoint to the named ramp. Consecutive lines with the
// same name extend the same table; a new name starts a new table.
func (l *rampList) add(name string, temperature, value float32) {
	if n := len(l.names); n > 0 && l.names[n-1] == name {
		l.ramps[n-1].points = append(l.ramps[n-1].points, rampPoint{temperature: temperature, value: value})
		return
	}
	l.names = append(l.names, name)
	l.ramps = append(l.ramps, ramp{points: []rampPoint{{temperature: temperature, value: value}}})
}

// find returns the ramp registered under name.
func (l *rampList) find(name string) (ramp, bool) {
	for i, n := range l.names {
		if n == name {
			return l.ramps[i], true
		}
	}
	return ramp{}, false
}
