package utdf2sumo

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// ExportLinksToCSV writes every connection of valid intersections with its movement and green bounds
func (report *Report) ExportLinksToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"tl_id", "link_index", "from_edge", "from_lane", "to_edge", "to_lane", "dir", "movement", "ped_allowed", "link_min_dur", "link_max_dur", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, program := range report.Programs() {
		junctionGeoms := make(map[string]string)
		for _, conn := range program.Connections {
			minDur, maxDur := "", ""
			if dur, ok := program.LinkDurations[conn.Index]; ok {
				minDur = fmt.Sprintf("%f", dur.MinDur)
				maxDur = fmt.Sprintf("%f", dur.MaxDur)
			}
			pedAllowed := ""
			if conn.Movement == MOVEMENT_PED {
				pedAllowed = strings.Trim(conn.PedAllowed.String(), "{}")
			}
			geom, ok := junctionGeoms[conn.FromEdge]
			if !ok {
				geom = program.approachWKT(conn.FromEdge)
				junctionGeoms[conn.FromEdge] = geom
			}
			err = writer.Write([]string{
				program.JunctionID,
				fmt.Sprintf("%d", conn.Index),
				conn.FromEdge,
				fmt.Sprintf("%d", conn.FromLane),
				conn.ToEdge,
				fmt.Sprintf("%d", conn.ToLane),
				conn.Dir,
				string(conn.Movement),
				pedAllowed,
				minDur,
				maxDur,
				geom,
			})
			if err != nil {
				return errors.Wrap(err, "Can't write link")
			}
		}
	}
	return nil
}

// ExportApproachesToGeoJSON writes inbound edges of valid intersections labelled with matched compass bounds
func (report *Report) ExportApproachesToGeoJSON(fname string) error {
	fc := geojson.NewFeatureCollection()
	for _, program := range report.Programs() {
		for _, approach := range program.Approaches {
			pts := make([][]float64, len(approach.Geom))
			for i, pt := range approach.Geom {
				pts[i] = []float64{pt.X(), pt.Y()}
			}
			feature := geojson.NewLineStringFeature(pts)
			feature.SetProperty("tl_id", program.JunctionID)
			feature.SetProperty("edge_id", approach.ID)
			feature.SetProperty("bound", program.Mapping[approach.ID].String())
			feature.SetProperty("dx", approach.Geometry.DX)
			feature.SetProperty("dy", approach.Geometry.DY)
			fc.AddFeature(feature)
		}
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal approaches")
	}
	err = os.WriteFile(fname, b, 0644)
	if err != nil {
		return errors.Wrap(err, "Can't write file")
	}
	return nil
}

func (program *TrafficLightProgram) approachWKT(edgeID string) string {
	for _, approach := range program.Approaches {
		if approach.ID == edgeID && len(approach.Geom) >= 2 {
			return wkt.MarshalString(terminalSegment(approach.Geom))
		}
	}
	return ""
}
