package main

// Reader for the FDS-style input subset that describes the wall geometry:
// a //META header naming the 1-D surfaces, followed by &RAMP, &MATL and
// &SURF records of KEY=VALUE properties terminated by a slash.

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// property is one KEY=VALUE assignment inside a record.
type property struct {
	key   string
	value string
}

// meta is the simulation header. Dimensioned headers declare a 3-D run,
// which this solver does not execute; plain headers list the 1-D surfaces.
type meta struct {
	threeDimensional bool
	dims             [3]int
	surfaceIDs       []int
}

// scriptModel bundles everything parsed from one input file.
type scriptModel struct {
	meta      meta
	materials materialList
	surfaces  surfaceList
}

var propertyKeyPattern = regexp.MustCompile(`([A-Za-z0-9_]+)\s*=`)

// parseScriptFile reads and parses an FDS input file.
func parseScriptFile(path string) (*scriptModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %q: %w", path, err)
	}
	defer f.Close()
	model, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("parsing input %q: %w", path, err)
	}
	return model, nil
}

// parseScript parses the META header and all supported records from r.
func parseScript(r io.Reader) (*scriptModel, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var headerLine string
	var records []string
	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if headerLine == "" {
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "//META") {
				return nil, fmt.Errorf("first line must be a //META header, got %q", line)
			}
			headerLine = strings.TrimSpace(strings.TrimPrefix(line, "//META"))
			continue
		}
		if pending.Len() == 0 && !strings.HasPrefix(line, "&") {
			continue
		}
		pending.WriteString(line)
		pending.WriteByte(' ')
		if strings.Contains(line, "/") {
			records = append(records, pending.String())
			pending.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	if headerLine == "" {
		return nil, fmt.Errorf("missing //META header")
	}

	model := &scriptModel{}
	var ramps rampList
	recordSlash := func(record string) string {
		if i := strings.Index(record, "/"); i >= 0 {
			return record[:i]
		}
		return record
	}
	// Ramps first: materials resolve against them, surfaces against materials.
	for _, pass := range []string{"&RAMP", "&MATL", "&SURF"} {
		for _, record := range records {
			if !strings.HasPrefix(record, pass) {
				continue
			}
			props := parseProperties(recordSlash(strings.TrimPrefix(record, pass)))
			var err error
			switch pass {
			case "&RAMP":
				err = addRampFromProperties(&ramps, props)
			case "&MATL":
				err = model.materials.addFromProperties(props, &ramps)
			case "&SURF":
				// Some surfaces carry properties this solver does not need;
				// skip the ones that fail to resolve, as the original does.
				_ = model.surfaces.addFromProperties(props, &model.materials)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if err := parseMetaHeader(headerLine, model); err != nil {
		return nil, err
	}
	return model, nil
}

// addRampFromProperties appends one interpolation point to the named ramp.
func addRampFromProperties(ramps *rampList, props []property) error {
	var (
		name       string
		t, v       float32
		hasT, hasV bool
	)
	for _, p := range props {
		switch p.key {
		case "ID":
			name = p.value
		case "T":
			f, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing ramp T: %w", err)
			}
			t, hasT = f, true
		case "F":
			f, err := parseFloat32(p.value)
			if err != nil {
				return fmt.Errorf("parsing ramp F: %w", err)
			}
			v, hasV = f, true
		}
	}
	if name == "" || !hasT || !hasV {
		return fmt.Errorf("ramp record incomplete: ID=%v T=%v F=%v", name != "", hasT, hasV)
	}
	ramps.add(name, t, v)
	return nil
}

// parseMetaHeader resolves the META header against the parsed surfaces.
// `8,8,8, NAME;` declares a 3-D run; `NAME; NAME2;` lists 1-D surfaces.
func parseMetaHeader(header string, model *scriptModel) error {
	names := strings.Split(header, ";")
	first := strings.TrimSpace(names[0])
	if dims, ok := parseDimensions(first); ok {
		model.meta.threeDimensional = true
		model.meta.dims = dims
		first = strings.TrimSpace(first[strings.LastIndex(first, ",")+1:])
		if rest := trimmedNames(names[1:]); len(rest) > 0 {
			return fmt.Errorf("multiple surfaces are not supported in 3-D")
		}
		idx, ok := model.surfaces.findIndex(first)
		if !ok {
			return fmt.Errorf("no SURF with ID %q", first)
		}
		model.meta.surfaceIDs = []int{idx}
		return nil
	}
	for _, name := range trimmedNames(names) {
		idx, ok := model.surfaces.findIndex(name)
		if !ok {
			return fmt.Errorf("no SURF with ID %q", name)
		}
		model.meta.surfaceIDs = append(model.meta.surfaceIDs, idx)
	}
	if len(model.meta.surfaceIDs) == 0 {
		return fmt.Errorf("META header names no surfaces")
	}
	return nil
}

// parseDimensions recognizes the `x,y,z, NAME` form of a 3-D header.
func parseDimensions(s string) ([3]int, bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 4 {
		return [3]int{}, false
	}
	var dims [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return [3]int{}, false
		}
		dims[i] = n
	}
	return dims, true
}

func trimmedNames(parts []string) []string {
	var names []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// parseProperties splits a record body into KEY=VALUE properties. Values run
// until the next key or the end of the record; quotes are stripped so list
// values like MATL_ID='A','B' survive as comma-separated text.
func parseProperties(body string) []property {
	matches := propertyKeyPattern.FindAllStringSubmatchIndex(body, -1)
	props := make([]property, 0, len(matches))
	for i, m := range matches {
		key := body[m[2]:m[3]]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		value := strings.TrimSpace(body[m[1]:end])
		value = strings.TrimSuffix(value, ",")
		value = strings.Map(func(r rune) rune {
			if r == '\'' || r == '"' {
				return -1
			}
			return r
		}, value)
		props = append(props, property{key: key, value: strings.TrimSpace(value)})
	}
	return props
}

// splitList splits a comma-separated property value into trimmed parts.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat32(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}
