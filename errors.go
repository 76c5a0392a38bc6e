package utdf2sumo

import (
	"github.com/pkg/errors"
)

var (
	ErrUnresolvableEdge     = errors.New("no compass bound fits edge geometry")
	ErrDuplicateBound       = errors.New("several edges match the same compass bound")
	ErrUnresolvedTie        = errors.New("no edge left for compass bound in slope tie-break")
	ErrUnmatchedMovement    = errors.New("connection movement does not match any signalized movement")
	ErrMalformedRingBarrier = errors.New("malformed ring-barrier structure")
	ErrUnknownPhase         = errors.New("phase is not defined in timing table")
	ErrInvalidLinkIndex     = errors.New("invalid connection link index")
	ErrJunctionNotFound     = errors.New("traffic light junction not found in network")
	ErrUnmappedApproach     = errors.New("inbound edge has no compass bound")
)
