package utdf2sumo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	UTDF_NETWORK   = "Network"
	UTDF_NODES     = "Nodes"
	UTDF_LINKS     = "Links"
	UTDF_LANES     = "Lanes"
	UTDF_TIMEPLANS = "Timeplans"
	UTDF_PHASES    = "Phases"
)

const (
	utdfRecordName = "RECORDNAME"
	utdfIntID      = "INTID"
	utdfData       = "DATA"
	utdfHoldColumn = "HOLD"
	utdfPedColumn  = "PED"
)

// UTDFTable is one section of combined UTDF file
type UTDFTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

func (table *UTDFTable) columnIdx(name string) int {
	return lo.IndexOf(table.Header, name)
}

// records returns rows of intersection keyed by RECORDNAME
func (table *UTDFTable) records(intID string) map[string][]string {
	nameIdx := table.columnIdx(utdfRecordName)
	idIdx := table.columnIdx(utdfIntID)
	result := make(map[string][]string)
	if nameIdx < 0 || idIdx < 0 {
		return result
	}
	for _, row := range table.Rows {
		if cell(row, idIdx) != intID {
			continue
		}
		result[cell(row, nameIdx)] = row
	}
	return result
}

// UTDF is content of combined UTDF CSV file
type UTDF struct {
	Tables map[string]*UTDFTable
}

// ReadUTDF reads combined UTDF CSV file
func ReadUTDF(fname string) (*UTDF, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open UTDF file")
	}
	defer file.Close()
	return ParseUTDF(file)
}

// ParseUTDF splits combined UTDF CSV data into sections
//
// Every section starts with '[Name]' line followed by optional description line and header row,
// which is the first row starting with RECORDNAME or INTID
func ParseUTDF(r io.Reader) (*UTDF, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	utdf := &UTDF{
		Tables: make(map[string]*UTDFTable),
	}
	var current *UTDFTable
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Can't read UTDF record")
		}
		if len(record) == 0 {
			continue
		}
		first := strings.TrimSpace(record[0])
		if strings.HasPrefix(first, "[") && strings.HasSuffix(first, "]") {
			current = &UTDFTable{
				Name: strings.Trim(first, "[]"),
			}
			utdf.Tables[current.Name] = current
			continue
		}
		if current == nil {
			continue
		}
		if current.Header == nil {
			if first == utdfRecordName || first == utdfIntID {
				current.Header = trimCells(record)
			}
			continue
		}
		if lo.EveryBy(record, func(s string) bool { return strings.TrimSpace(s) == "" }) {
			continue
		}
		current.Rows = append(current.Rows, trimCells(record))
	}
	for _, required := range []string{UTDF_LANES, UTDF_TIMEPLANS, UTDF_PHASES} {
		table, ok := utdf.Tables[required]
		if !ok || table.Header == nil {
			return nil, errors.Errorf("UTDF data has no '[%s]' section", required)
		}
	}
	return utdf, nil
}

// SignalizedIntersections returns sorted identifiers of intersections having timing plan
func (utdf *UTDF) SignalizedIntersections() []string {
	table := utdf.Tables[UTDF_TIMEPLANS]
	idIdx := table.columnIdx(utdfIntID)
	if idIdx < 0 {
		return nil
	}
	ids := lo.Uniq(lo.FilterMap(table.Rows, func(row []string, _ int) (string, bool) {
		id := cell(row, idIdx)
		return id, id != ""
	}))
	sort.Slice(ids, func(i, j int) bool {
		return naturalLess(ids[i], ids[j])
	})
	return ids
}

// SignalTiming builds timing plan of intersection from lane, phase and timeplan sections
func (utdf *UTDF) SignalTiming(intID string) (*SignalTiming, []string, error) {
	movements, err := utdf.movementRecords(intID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't parse lanes of intersection '%s'", intID)
	}
	phases, err := utdf.phaseTimings(intID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't parse phases of intersection '%s'", intID)
	}
	timing, diagnostics := NewSignalTiming(intID, movements, phases)

	plans := utdf.Tables[UTDF_TIMEPLANS].records(intID)
	dataIdx := utdf.Tables[UTDF_TIMEPLANS].columnIdx(utdfData)
	if row, ok := plans["Control Type"]; ok {
		code := normalizeNumber(cell(row, dataIdx))
		if controlType, ok := controlTypeByUTDF[code]; ok {
			timing.ControlType = controlType
		} else {
			diagnostics = append(diagnostics, fmt.Sprintf("unknown control type '%s', static is used", code))
		}
	}
	if row, ok := plans["Offset"]; ok {
		timing.Offset = parseFloatCell(cell(row, dataIdx))
	}
	return timing, diagnostics, nil
}

func (utdf *UTDF) movementRecords(intID string) ([]MovementRecord, error) {
	table := utdf.Tables[UTDF_LANES]
	records := table.records(intID)
	if len(records) == 0 {
		return nil, errors.New("no lane records")
	}
	valueOf := func(recordName string, col int) string {
		return cell(records[recordName], col)
	}
	movements := []MovementRecord{}
	for col, name := range table.Header {
		if name == utdfRecordName || name == utdfIntID || name == utdfHoldColumn || name == "" {
			continue
		}
		if name == utdfPedColumn {
			ped := MovementRecord{
				Code:      MOVEMENT_PED,
				Protected: phaseRefs(records, col, "Phase"),
			}
			if len(ped.Protected) > 0 {
				movements = append(movements, ped)
			}
			continue
		}
		upNode := valueOf("Up Node", col)
		if upNode == "" {
			continue
		}
		movements = append(movements, MovementRecord{
			Code:      MovementCode(name),
			UpNode:    upNode,
			DestNode:  valueOf("Dest Node", col),
			Lanes:     int(parseFloatCell(valueOf("Lanes", col))),
			Protected: phaseRefs(records, col, "Phase"),
			Permitted: phaseRefs(records, col, "PermPhase"),
			Storage:   parseFloatCell(valueOf("Storage", col)),
			Speed:     parseFloatCell(valueOf("Speed", col)),
			Volume:    parseFloatCell(valueOf("Volume", col)),
			Detectors: int(parseFloatCell(valueOf("numDetects", col))),
		})
	}
	return movements, nil
}

// phaseRefs collects phase identifiers of <prefix>1..<prefix>4 records
func phaseRefs(records map[string][]string, col int, prefix string) []string {
	refs := []string{}
	for i := 1; i <= 4; i++ {
		value := normalizeNumber(cell(records[fmt.Sprintf("%s%d", prefix, i)], col))
		if value == "" || value == "-1" {
			continue
		}
		refs = append(refs, "D"+value)
	}
	return refs
}

func (utdf *UTDF) phaseTimings(intID string) ([]*PhaseTiming, error) {
	table := utdf.Tables[UTDF_PHASES]
	records := table.records(intID)
	if len(records) == 0 {
		return nil, errors.New("no phase records")
	}
	phases := []*PhaseTiming{}
	for col, name := range table.Header {
		if name == utdfRecordName || name == utdfIntID || name == "" {
			continue
		}
		if cell(records["MinGreen"], col) == "" {
			continue
		}
		phase := &PhaseTiming{
			ID:       name,
			MinGreen: parseFloatCell(cell(records["MinGreen"], col)),
			MaxGreen: parseFloatCell(cell(records["MaxGreen"], col)),
			Yellow:   parseFloatCell(cell(records["Yellow"], col)),
			AllRed:   parseFloatCell(cell(records["AllRed"], col)),
		}
		if brp := cell(records["BRP"], col); brp != "" {
			pos, err := ParseRingPosition(brp)
			if err != nil {
				return nil, errors.Wrapf(err, "phase '%s'", name)
			}
			phase.Position = pos
			phase.HasPosition = true
		}
		phases = append(phases, phase)
	}
	return phases, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func trimCells(record []string) []string {
	return lo.Map(record, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
}

// normalizeNumber turns "2.0" into "2"
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func parseFloatCell(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// naturalLess orders numeric identifiers by value, others lexicographically after numeric ones
func naturalLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return ai < bi
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
