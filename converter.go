package utdf2sumo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TimingSource provides timing plans of signalized intersections
type TimingSource interface {
	SignalizedIntersections() []string
	SignalTiming(intID string) (*SignalTiming, []string, error)
}

// StaticTimings is in-memory TimingSource
type StaticTimings map[string]*SignalTiming

// SignalizedIntersections returns sorted keys
func (timings StaticTimings) SignalizedIntersections() []string {
	ids := make([]string, 0, len(timings))
	for id := range timings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return naturalLess(ids[i], ids[j])
	})
	return ids
}

// SignalTiming returns stored plan
func (timings StaticTimings) SignalTiming(intID string) (*SignalTiming, []string, error) {
	timing, ok := timings[intID]
	if !ok {
		return nil, nil, errors.Errorf("no timing plan for intersection '%s'", intID)
	}
	return timing, nil, nil
}

type Converter struct {
	workers          int
	programID        string
	linkDurationMode LinkDurationMode
	verbose          bool
}

func (converter *Converter) String() string {
	return fmt.Sprintf(`
Signal converter parameters:
	workers: %d
	program_id: '%s'
	link_duration: '%s'
	verbose: %t
	`,
		converter.workers,
		converter.programID,
		converter.linkDurationMode,
		converter.verbose,
	)
}

func NewConverter(options ...func(*Converter)) *Converter {
	converter := &Converter{
		workers:          1,
		programID:        "0",
		linkDurationMode: LINK_DURATION_FIRST_MATCH,
		verbose:          false,
	}
	for _, option := range options {
		option(converter)
	}
	if converter.workers < 1 {
		converter.workers = 1
	}
	return converter
}

func WithWorkers(workers int) func(*Converter) {
	return func(converter *Converter) {
		converter.workers = workers
	}
}

func WithProgramID(programID string) func(*Converter) {
	return func(converter *Converter) {
		converter.programID = programID
	}
}

func WithLinkDurationMode(mode LinkDurationMode) func(*Converter) {
	return func(converter *Converter) {
		converter.linkDurationMode = mode
	}
}

func WithVerbose(verbose bool) func(*Converter) {
	return func(converter *Converter) {
		converter.verbose = verbose
	}
}

// IntersectionResult is outcome of single intersection conversion
type IntersectionResult struct {
	ID          string
	Program     *TrafficLightProgram // nil when conversion failed
	Diagnostics []string
	Err         error
}

// Valid reports if traffic light program has been built
func (result IntersectionResult) Valid() bool {
	return result.Err == nil && result.Program != nil
}

// Report is outcome of batch conversion
type Report struct {
	RunID   uuid.UUID
	Results []IntersectionResult // Sorted by intersection ID
	Total   int
	Valid   int
}

// Summary renders success tally
func (report *Report) Summary() string {
	return fmt.Sprintf("Total signal intersections: %d, valid intersections: %d", report.Total, report.Valid)
}

// Programs returns programs of valid intersections
func (report *Report) Programs() []*TrafficLightProgram {
	programs := make([]*TrafficLightProgram, 0, report.Valid)
	for _, result := range report.Results {
		if result.Valid() {
			programs = append(programs, result.Program)
		}
	}
	return programs
}

// Convert builds traffic light program for every signalized intersection
//
// Intersections are independent: failure of one is recorded in its result and does not stop others.
// Cancelled context marks not yet processed intersections as failed
func (converter *Converter) Convert(ctx context.Context, source TimingSource, net *SumoNet) *Report {
	st := time.Now()
	report := &Report{
		RunID: uuid.New(),
	}
	runLog := log.WithField("run", report.RunID.String())
	ids := source.SignalizedIntersections()
	report.Total = len(ids)
	report.Results = make([]IntersectionResult, len(ids))
	if converter.verbose {
		runLog.Infof("Converting %d signalized intersections...", len(ids))
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(converter.workers)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Results[i] = IntersectionResult{ID: id, Err: errors.Wrap(err, "Conversion cancelled")}
				return nil
			}
			report.Results[i] = converter.convertIntersection(source, net, id, runLog.WithField("tl", id))
			return nil
		})
	}
	// Workers never return errors: failures are kept in results
	_ = group.Wait()

	for _, result := range report.Results {
		if result.Valid() {
			report.Valid++
		}
	}
	if converter.verbose {
		runLog.Infof("Done in %v. %s", time.Since(st), report.Summary())
	}
	return report
}

func (converter *Converter) convertIntersection(source TimingSource, net *SumoNet, id string, entry *logrus.Entry) IntersectionResult {
	result := IntersectionResult{
		ID:          id,
		Diagnostics: []string{},
	}
	timing, diagnostics, err := source.SignalTiming(id)
	result.Diagnostics = append(result.Diagnostics, diagnostics...)
	if err != nil {
		result.Err = err
		converter.logFailure(entry, err)
		return result
	}
	junction, err := net.Junction(id)
	if err != nil {
		result.Err = err
		converter.logFailure(entry, err)
		return result
	}
	program, err := BuildProgram(timing, junction, converter.programID, converter.linkDurationMode)
	if err != nil {
		result.Err = err
		converter.logFailure(entry, err)
		return result
	}
	result.Diagnostics = append(result.Diagnostics, program.Diagnostics...)
	result.Program = program
	for _, diag := range result.Diagnostics {
		if converter.verbose {
			entry.Info(diag)
		} else {
			entry.Debug(diag)
		}
	}
	entry.WithField("phases", len(program.Phases)).Debug("Traffic light program is ready")
	return result
}

func (converter *Converter) logFailure(entry *logrus.Entry, err error) {
	if converter.verbose {
		entry.WithError(err).Warn("Intersection skipped")
		return
	}
	entry.WithError(err).Debug("Intersection skipped")
}
