package utdf2sumo

import (
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

type sumoNetXML struct {
	XMLName     xml.Name            `xml:"net"`
	Edges       []sumoEdgeXML       `xml:"edge"`
	Connections []sumoConnectionXML `xml:"connection"`
}

type sumoEdgeXML struct {
	ID            string        `xml:"id,attr"`
	Function      string        `xml:"function,attr"`
	CrossingEdges string        `xml:"crossingEdges,attr"`
	Lanes         []sumoLaneXML `xml:"lane"`
}

type sumoLaneXML struct {
	ID    string `xml:"id,attr"`
	Index int    `xml:"index,attr"`
	Shape string `xml:"shape,attr"`
}

type sumoConnectionXML struct {
	From      string `xml:"from,attr"`
	To        string `xml:"to,attr"`
	FromLane  int    `xml:"fromLane,attr"`
	ToLane    int    `xml:"toLane,attr"`
	TL        string `xml:"tl,attr"`
	LinkIndex string `xml:"linkIndex,attr"`
	Dir       string `xml:"dir,attr"`
	State     string `xml:"state,attr"`
}

// SumoNet is signal related part of SUMO network
type SumoNet struct {
	Junctions map[string]*Junction
	Shapes    map[string]orb.LineString // Edge ID -> shape of its first lane
	Crossings map[string][]string

	invalid map[string]error
}

// ReadSumoNet reads SUMO network (*.net.xml) file
func ReadSumoNet(fname string) (*SumoNet, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open SUMO network file")
	}
	defer file.Close()
	return ParseSumoNet(file)
}

// ParseSumoNet extracts traffic light junctions from SUMO network XML
//
// Connections having both 'tl' and 'linkIndex' are grouped by traffic light.
// Junctions with broken link indices are kept as invalid and reported by Junction()
func ParseSumoNet(r io.Reader) (*SumoNet, error) {
	raw := sumoNetXML{}
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "Can't decode SUMO network")
	}
	net := &SumoNet{
		Junctions: make(map[string]*Junction),
		Shapes:    make(map[string]orb.LineString),
		Crossings: make(map[string][]string),
		invalid:   make(map[string]error),
	}
	for _, edge := range raw.Edges {
		if edge.Function == "crossing" {
			net.Crossings[edge.ID] = strings.Fields(edge.CrossingEdges)
		}
		if len(edge.Lanes) == 0 {
			continue
		}
		lane := edge.Lanes[0]
		for _, candidate := range edge.Lanes {
			if candidate.Index < lane.Index {
				lane = candidate
			}
		}
		shape, err := parseShape(lane.Shape)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse shape of lane '%s'", lane.ID)
		}
		net.Shapes[edge.ID] = shape
	}

	linksByTL := make(map[string]map[int]Connection)
	for _, rc := range raw.Connections {
		if rc.TL == "" || rc.LinkIndex == "" {
			continue
		}
		if _, ok := linksByTL[rc.TL]; !ok {
			linksByTL[rc.TL] = make(map[int]Connection)
		}
		idx, err := strconv.Atoi(rc.LinkIndex)
		if err != nil || idx < 0 {
			net.invalid[rc.TL] = errors.Wrapf(ErrInvalidLinkIndex, "link index '%s'", rc.LinkIndex)
			continue
		}
		if _, ok := linksByTL[rc.TL][idx]; ok {
			net.invalid[rc.TL] = errors.Wrapf(ErrInvalidLinkIndex, "duplicated link index %d", idx)
			continue
		}
		conn := Connection{
			Index:    idx,
			FromEdge: rc.From,
			ToEdge:   rc.To,
			FromLane: rc.FromLane,
			ToLane:   rc.ToLane,
			Dir:      rc.Dir,
			State:    rc.State,
		}
		if !isInternalEdge(conn.FromEdge) && (conn.Dir == "" || conn.Dir == "invalid") {
			fromShape, okFrom := net.Shapes[conn.FromEdge]
			toShape, okTo := net.Shapes[conn.ToEdge]
			if okFrom && okTo {
				conn.Dir = sumoDirBetweenLines(fromShape, toShape)
			}
		}
		linksByTL[rc.TL][idx] = conn
	}

	for tlID, links := range linksByTL {
		junction := &Junction{
			ID:          tlID,
			Connections: make([]Connection, 0, len(links)),
			Approaches:  make(map[string]ApproachEdge),
			Crossings:   make(map[string][]string),
		}
		for _, conn := range links {
			junction.Connections = append(junction.Connections, conn)
		}
		sort.Slice(junction.Connections, func(i, j int) bool {
			return junction.Connections[i].Index < junction.Connections[j].Index
		})
		if _, broken := net.invalid[tlID]; !broken {
			if err := validateLinkIndices(junction.Connections); err != nil {
				net.invalid[tlID] = err
			}
		}
		for _, conn := range junction.Connections {
			if crossed, ok := net.Crossings[conn.ToEdge]; ok {
				junction.Crossings[conn.ToEdge] = crossed
			}
			if conn.IsInternal() {
				continue
			}
			if _, ok := junction.Approaches[conn.FromEdge]; ok {
				continue
			}
			shape, ok := net.Shapes[conn.FromEdge]
			if !ok || len(shape) < 2 {
				continue
			}
			junction.Approaches[conn.FromEdge] = ApproachEdge{
				ID:       conn.FromEdge,
				Geom:     shape,
				Geometry: terminalGeometry(shape),
			}
		}
		net.Junctions[tlID] = junction
	}
	return net, nil
}

// Junction returns traffic light junction by its ID
func (net *SumoNet) Junction(tlID string) (*Junction, error) {
	junction, ok := net.Junctions[tlID]
	if !ok {
		return nil, errors.Wrapf(ErrJunctionNotFound, "tl '%s'", tlID)
	}
	if err, broken := net.invalid[tlID]; broken {
		return nil, errors.Wrapf(err, "tl '%s'", tlID)
	}
	return junction, nil
}
