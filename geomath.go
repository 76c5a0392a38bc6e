package utdf2sumo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ApproachGeometry is the heading of an edge's terminal shape segment
type ApproachGeometry struct {
	DX    float64
	DY    float64
	Slope float64
}

// String returns pretty printed value for ApproachGeometry
func (geom ApproachGeometry) String() string {
	return fmt.Sprintf("dx: %f | dy: %f | slope: %f", geom.DX, geom.DY, geom.Slope)
}

// AbsSlope returns |slope|
func (geom ApproachGeometry) AbsSlope() float64 {
	return math.Abs(geom.Slope)
}

// newApproachGeometry evaluates heading between two points. Slope is +Inf for vertical segment
func newApproachGeometry(from, to orb.Point) ApproachGeometry {
	dx := to.X() - from.X()
	dy := to.Y() - from.Y()
	slope := math.Inf(1)
	if dx != 0 {
		slope = dy / dx
	}
	return ApproachGeometry{DX: dx, DY: dy, Slope: slope}
}

// terminalSegment returns last two points of the line
//
// Note: panics if number of points in line is less than 2
//
func terminalSegment(line orb.LineString) orb.LineString {
	return orb.LineString{line[len(line)-2], line[len(line)-1]}
}

// terminalGeometry returns heading of line's last segment
//
// Note: panics if number of points in line is less than 2
//
func terminalGeometry(line orb.LineString) ApproachGeometry {
	return newApproachGeometry(line[len(line)-2], line[len(line)-1])
}

// parseShape parses SUMO shape attribute: space separated "x,y" (optionally "x,y,z") pairs
func parseShape(shape string) (orb.LineString, error) {
	fields := strings.Fields(shape)
	line := make(orb.LineString, 0, len(fields))
	for _, field := range fields {
		coords := strings.Split(field, ",")
		if len(coords) < 2 {
			return nil, errors.Errorf("bad shape point '%s'", field)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, errors.Errorf("bad shape X '%s'", coords[0])
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, errors.Errorf("bad shape Y '%s'", coords[1])
		}
		line = append(line, orb.Point{x, y})
	}
	return line, nil
}

// sumoDirBetweenLines estimates SUMO 'dir' letter for movement from incoming line l1 to outgoing line l2
//
// Used when network does not provide a usable direction for a connection
//
// Note: panics if number of points in any line is less than 2
//
func sumoDirBetweenLines(l1 orb.LineString, l2 orb.LineString) string {
	startL1, endL1 := l1[len(l1)-2], l1[len(l1)-1]
	endL2 := l2[len(l2)-1]

	angle1 := math.Atan2(endL1.Y()-startL1.Y(), endL1.X()-startL1.X())
	angle2 := math.Atan2(endL2.Y()-endL1.Y(), endL2.X()-endL1.X())

	angleDiff := angle2 - angle1
	if angleDiff < -1*math.Pi {
		angleDiff += 2 * math.Pi
	}
	if angleDiff > math.Pi {
		angleDiff -= 2 * math.Pi
	}

	if -0.25*math.Pi <= angleDiff && angleDiff <= 0.25*math.Pi {
		return "s"
	} else if angleDiff < -0.25*math.Pi {
		return "r"
	} else if angleDiff <= 0.75*math.Pi {
		return "l"
	}
	return "t"
}
