package tuning

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadScale reads a Scala .scl file and makes it the active scale.
// On error the previous scale stays in effect.
func (m *Map) LoadScale(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := m.ReadScale(f); err != nil {
		return fmt.Errorf("scale %s: %w", path, err)
	}
	return nil
}

// ReadScale parses Scala scale data from r.
func (m *Map) ReadScale(r io.Reader) error {
	lines, err := scalaLines(r, true)
	if err != nil {
		return err
	}
	if len(lines) < 2 {
		return fmt.Errorf("missing description or note count")
	}
	// lines[0] is the free-form description.
	count, err := strconv.Atoi(firstField(lines[1]))
	if err != nil || count < 1 {
		return fmt.Errorf("invalid note count %q", lines[1])
	}
	if len(lines)-2 < count {
		return fmt.Errorf("expected %d pitches, found %d", count, len(lines)-2)
	}

	scale := make([]float64, count)
	for i := range scale {
		ratio, err := parsePitch(lines[2+i])
		if err != nil {
			return fmt.Errorf("degree %d: %w", i+1, err)
		}
		scale[i] = ratio
	}

	m.scale = scale
	m.update()
	return nil
}

// LoadKeyMap reads a Scala .kbm keyboard mapping and makes it active.
// On error the previous keymap stays in effect.
func (m *Map) LoadKeyMap(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := m.ReadKeyMap(f); err != nil {
		return fmt.Errorf("keymap %s: %w", path, err)
	}
	return nil
}

// ReadKeyMap parses Scala keyboard mapping data from r.
func (m *Map) ReadKeyMap(r io.Reader) error {
	lines, err := scalaLines(r, false)
	if err != nil {
		return err
	}
	if len(lines) < 7 {
		return fmt.Errorf("expected 7 header values, found %d", len(lines))
	}

	header := make([]int, 7)
	for i := range header {
		if i == 5 {
			continue
		}
		v, err := strconv.Atoi(firstField(lines[i]))
		if err != nil {
			return fmt.Errorf("header line %d: invalid integer %q", i+1, lines[i])
		}
		header[i] = v
	}
	refPitch, err := strconv.ParseFloat(firstField(lines[5]), 64)
	if err != nil || refPitch <= 0 {
		return fmt.Errorf("invalid reference frequency %q", lines[5])
	}

	mapSize := header[0]
	if mapSize < 0 {
		return fmt.Errorf("invalid map size %d", mapSize)
	}
	first, last := header[1], header[2]
	if first < 0 || last >= numNotes || first > last {
		return fmt.Errorf("invalid note range %d..%d", first, last)
	}
	if header[3] < 0 || header[3] >= numNotes || header[4] < 0 || header[4] >= numNotes {
		return fmt.Errorf("middle/reference note out of range")
	}

	mapping := make([]int, mapSize)
	entries := lines[7:]
	for i := range mapping {
		// Missing trailing entries are unmapped.
		if i >= len(entries) {
			mapping[i] = -1
			continue
		}
		tok := firstField(entries[i])
		if tok == "x" || tok == "X" {
			mapping[i] = -1
			continue
		}
		deg, err := strconv.Atoi(tok)
		if err != nil || deg < 0 {
			return fmt.Errorf("mapping entry %d: invalid degree %q", i, entries[i])
		}
		mapping[i] = deg
	}

	m.mapping = mapping
	m.firstNote = first
	m.lastNote = last
	m.zeroNote = header[3]
	m.refNote = header[4]
	m.refPitch = refPitch
	m.octaveDegrees = header[6]
	m.update()
	return nil
}

// scalaLines returns the non-comment lines of a Scala file. Comment lines
// start with '!'. Blank lines are dropped except the scale description, which
// is the first line when withDescription is set and may be empty.
func scalaLines(r io.Reader, withDescription bool) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "!") {
			continue
		}
		if line == "" && !(withDescription && len(lines) == 0) {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// parsePitch converts a Scala pitch entry to a frequency ratio. Entries with a
// period are cents; others are ratios "n/d" or plain integers.
func parsePitch(s string) (float64, error) {
	tok := firstField(s)
	if tok == "" {
		return 0, fmt.Errorf("empty pitch")
	}
	if strings.Contains(tok, ".") {
		cents, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cents value %q", tok)
		}
		return math.Pow(2, cents/1200), nil
	}
	num, den := tok, "1"
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		num, den = tok[:i], tok[i+1:]
	}
	n, errN := strconv.ParseUint(num, 10, 64)
	d, errD := strconv.ParseUint(den, 10, 64)
	if errN != nil || errD != nil || n == 0 || d == 0 {
		return 0, fmt.Errorf("invalid ratio %q", tok)
	}
	return float64(n) / float64(d), nil
}
