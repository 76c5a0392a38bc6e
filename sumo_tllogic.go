package utdf2sumo

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type additionalXML struct {
	XMLName  xml.Name      `xml:"additional"`
	TLLogics []tlLogicXML `xml:"tlLogic"`
}

type tlLogicXML struct {
	ID        string     `xml:"id,attr"`
	Type      string     `xml:"type,attr"`
	ProgramID string     `xml:"programID,attr"`
	Offset    string     `xml:"offset,attr"`
	Params    []paramXML `xml:"param"`
	Phases    []phaseXML `xml:"phase"`
}

type paramXML struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type phaseXML struct {
	Name     string `xml:"name,attr"`
	Duration string `xml:"duration,attr"`
	MinDur   string `xml:"minDur,attr,omitempty"`
	MaxDur   string `xml:"maxDur,attr,omitempty"`
	Next     string `xml:"next,attr"`
	State    string `xml:"state,attr"`
}

// actuatedParams are default detector parameters of actuated program
var actuatedParams = []paramXML{
	{Key: "detector-gap", Value: "2.0"},
	{Key: "file", Value: "NULL"},
	{Key: "freq", Value: "300"},
	{Key: "max-gap", Value: "3.0"},
	{Key: "passing-time", Value: "2.0"},
	{Key: "show-detectors", Value: "false"},
	{Key: "vTypes", Value: ""},
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func prepareTLLogic(program *TrafficLightProgram) tlLogicXML {
	logic := tlLogicXML{
		ID:        program.JunctionID,
		Type:      program.Type.String(),
		ProgramID: program.ProgramID,
		Offset:    strconv.Itoa(int(program.Offset)),
	}
	if program.Type == CONTROL_ACTUATED {
		logic.Params = append(logic.Params, actuatedParams...)
	}
	for _, phase := range program.Phases {
		next := make([]string, len(phase.Next))
		for i, n := range phase.Next {
			next[i] = strconv.Itoa(n)
		}
		px := phaseXML{
			Name:     phase.Name,
			Duration: formatSeconds(phase.Duration(program.Type)),
			Next:     strings.Join(next, " "),
			State:    phase.State,
		}
		if phase.Kind == PHASE_GREEN {
			px.MinDur = formatSeconds(phase.MinDur)
			px.MaxDur = formatSeconds(phase.MaxDur)
		}
		logic.Phases = append(logic.Phases, px)
	}
	links := make([]int, 0, len(program.LinkDurations))
	for idx := range program.LinkDurations {
		links = append(links, idx)
	}
	sort.Ints(links)
	for _, idx := range links {
		dur := program.LinkDurations[idx]
		logic.Params = append(logic.Params,
			paramXML{Key: fmt.Sprintf("linkMaxDur:%d", idx), Value: formatSeconds(dur.MaxDur)},
			paramXML{Key: fmt.Sprintf("linkMinDur:%d", idx), Value: formatSeconds(dur.MinDur)},
		)
	}
	return logic
}

// WriteAdditional writes traffic light programs as SUMO additional file
func WriteAdditional(w io.Writer, programs []*TrafficLightProgram) error {
	doc := additionalXML{
		TLLogics: make([]tlLogicXML, 0, len(programs)),
	}
	for _, program := range programs {
		doc.TLLogics = append(doc.TLLogics, prepareTLLogic(program))
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "Can't write XML header")
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "\t")
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(err, "Can't encode traffic light programs")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, "Can't finish XML document")
	}
	return nil
}

// ExportAdditional writes programs of valid intersections into file
func (report *Report) ExportAdditional(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()
	return WriteAdditional(file, report.Programs())
}

// tlLogicSpan is byte range of tlLogic element in network source
type tlLogicSpan struct {
	start int64
	end   int64
	id    string
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// lineIndent returns whitespace between previous line break and given offset
func lineIndent(src []byte, offset int64) []byte {
	lineStart := bytes.LastIndexByte(src[:offset], '\n') + 1
	indent := src[lineStart:offset]
	if len(bytes.TrimSpace(indent)) != 0 {
		return nil
	}
	return indent
}

// RewriteTLLogics copies SUMO network replacing tlLogic elements of junctions having a program
//
// The first tlLogic of a junction is replaced, further ones of the same junction are dropped.
// Everything else is copied byte by byte. Returns identifiers of replaced junctions
func RewriteTLLogics(r io.Reader, w io.Writer, programs []*TrafficLightProgram) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read SUMO network")
	}
	byID := make(map[string]*TrafficLightProgram, len(programs))
	for _, program := range programs {
		byID[program.JunctionID] = program
	}

	spans := []tlLogicSpan{}
	decoder := xml.NewDecoder(bytes.NewReader(src))
	depth := 0
	var current *tlLogicSpan
	for {
		start := decoder.InputOffset()
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Can't decode SUMO network")
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 || t.Name.Local != "tlLogic" {
				continue
			}
			if id := attrValue(t.Attr, "id"); byID[id] != nil {
				current = &tlLogicSpan{start: start, id: id}
			}
		case xml.EndElement:
			if depth == 2 && current != nil && t.Name.Local == "tlLogic" {
				current.end = decoder.InputOffset()
				spans = append(spans, *current)
				current = nil
			}
			depth--
		}
	}

	replaced := []string{}
	written := make(map[string]bool, len(spans))
	prev := int64(0)
	for _, span := range spans {
		if _, err := w.Write(src[prev:span.start]); err != nil {
			return nil, errors.Wrap(err, "Can't write SUMO network")
		}
		prev = span.end
		if written[span.id] {
			continue
		}
		written[span.id] = true
		replaced = append(replaced, span.id)

		var buf bytes.Buffer
		encoder := xml.NewEncoder(&buf)
		encoder.Indent("", "\t")
		err := encoder.EncodeElement(prepareTLLogic(byID[span.id]), xml.StartElement{Name: xml.Name{Local: "tlLogic"}})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't encode traffic light program of junction '%s'", span.id)
		}
		element := bytes.ReplaceAll(buf.Bytes(), []byte("\n"), append([]byte("\n"), lineIndent(src, span.start)...))
		if _, err := w.Write(element); err != nil {
			return nil, errors.Wrap(err, "Can't write SUMO network")
		}
	}
	if _, err := w.Write(src[prev:]); err != nil {
		return nil, errors.Wrap(err, "Can't write SUMO network")
	}
	return replaced, nil
}

// UpdateSumoNet writes copy of network file with traffic light programs of valid intersections.
// Input and output may be the same file
func (report *Report) UpdateSumoNet(in, out string) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, "Can't read SUMO network file")
	}
	var buf bytes.Buffer
	programs := report.Programs()
	replaced, err := RewriteTLLogics(bytes.NewReader(src), &buf, programs)
	if err != nil {
		return err
	}
	if len(replaced) != len(programs) {
		for _, program := range programs {
			if !lo.Contains(replaced, program.JunctionID) {
				log.WithField("tl", program.JunctionID).Warn("Network has no tlLogic for junction, program is not written")
			}
		}
	}
	err = os.WriteFile(out, buf.Bytes(), 0644)
	if err != nil {
		return errors.Wrap(err, "Can't write SUMO network file")
	}
	return nil
}
