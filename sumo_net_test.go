package utdf2sumo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSumoNet(t *testing.T) {
	net, err := ParseSumoNet(strings.NewReader(netSample))
	require.NoError(t, err)
	require.Len(t, net.Junctions, 1)
	assert.Equal(t, []string{"south_out", "south_in"}, net.Crossings[":1_c0"])

	junction, err := net.Junction("1")
	require.NoError(t, err)
	require.Len(t, junction.Connections, 9)
	for i, conn := range junction.Connections {
		assert.Equal(t, i, conn.Index)
	}
	assert.Equal(t, []string{"south_in", "north_in", "west_in", "east_in"}, junction.InboundEdges())
	assert.Len(t, junction.Approaches, 4)
	assert.Equal(t, map[string][]string{":1_c0": {"south_out", "south_in"}}, junction.Crossings)

	south := junction.Approaches["south_in"]
	assert.Equal(t, 0.0, south.Geometry.DX)
	assert.Equal(t, 40.0, south.Geometry.DY)
	assert.Len(t, south.Geom, 3)

	// Missing direction is derived from lane shapes
	assert.Equal(t, "l", junction.Connections[5].Dir)
	assert.True(t, junction.Connections[8].IsInternal())

	_, err = net.Junction("2")
	assert.ErrorIs(t, err, ErrJunctionNotFound)
}

func TestParseSumoNetBrokenLinkIndex(t *testing.T) {
	sample := strings.Replace(netSample, `tl="1" linkIndex="7"`, `tl="1" linkIndex="3"`, 1)
	net, err := ParseSumoNet(strings.NewReader(sample))
	require.NoError(t, err)
	_, err = net.Junction("1")
	assert.ErrorIs(t, err, ErrInvalidLinkIndex)

	sample = strings.Replace(netSample, `tl="1" linkIndex="8"`, `tl="1" linkIndex="10"`, 1)
	net, err = ParseSumoNet(strings.NewReader(sample))
	require.NoError(t, err)
	_, err = net.Junction("1")
	assert.ErrorIs(t, err, ErrInvalidLinkIndex)
}

func TestParseSumoNetMalformed(t *testing.T) {
	_, err := ParseSumoNet(strings.NewReader("<net><edge id="))
	assert.Error(t, err)
}
