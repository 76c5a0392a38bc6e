package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/utdf2sumo"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configPath   = flag.String("config", "", "YAML configuration file. Flags set explicitly override its values")
	netFileName  = flag.String("net", "", "SUMO network file (*.net.xml)")
	utdfFileName = flag.String("utdf", "", "Combined UTDF file (*.csv)")
	out          = flag.String("out", "tllogic.add.xml", "Output SUMO additional file with traffic light programs")
	linksCSV     = flag.String("links-csv", "", "Optional ';'-separated CSV with signal links of converted intersections")
	geojsonOut   = flag.String("geojson", "", "Optional GeoJSON with approach edges and matched compass bounds")
	netOut       = flag.String("net-out", "", "Optional copy of SUMO network with tlLogic elements replaced. May be equal to --net")
	workers      = flag.Int("workers", 4, "Number of intersections processed concurrently")
	programID    = flag.String("program-id", "0", "programID attribute of generated tlLogic elements")
	linkDuration = flag.String("link-duration", "first_match", "Link duration aggregation. Expected values: first_match / all_phases")
	verbose      = flag.Bool("verbose", false, "Report per-intersection diagnostics")

	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "Log level (trace debug info warn error critical off)")

	log = logrus.WithField("module", "cli")
)

func main() {
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			log.Fatalln(err)
		}
	}
	applyFlags(&cfg)

	level, ok := logLevels[cfg.LogLevel]
	if !ok {
		log.Fatalf("log.level must be one of %v", logLevels)
	}
	logrus.SetLevel(level)

	mode, ok := utdf2sumo.ParseLinkDurationMode(cfg.LinkDuration)
	if !ok {
		log.Fatalf("Unknown link duration mode '%s'", cfg.LinkDuration)
	}
	if cfg.Net == "" || cfg.UTDF == "" {
		fmt.Fprintln(os.Stderr, "Both --net and --utdf must be provided, see --help")
		os.Exit(1)
	}

	st := time.Now()
	utdf, err := utdf2sumo.ReadUTDF(cfg.UTDF)
	if err != nil {
		log.Fatalln(err)
	}
	net, err := utdf2sumo.ReadSumoNet(cfg.Net)
	if err != nil {
		log.Fatalln(err)
	}
	log.Infof("Inputs have been read in %v", time.Since(st))

	converter := utdf2sumo.NewConverter(
		utdf2sumo.WithWorkers(cfg.Workers),
		utdf2sumo.WithProgramID(cfg.ProgramID),
		utdf2sumo.WithLinkDurationMode(mode),
		utdf2sumo.WithVerbose(cfg.Verbose),
	)
	log.Debug(converter)
	report := converter.Convert(context.Background(), utdf, net)

	if err := report.ExportAdditional(cfg.Out); err != nil {
		log.Fatalln(err)
	}
	if cfg.LinksCSV != "" {
		if err := report.ExportLinksToCSV(cfg.LinksCSV); err != nil {
			log.Fatalln(err)
		}
	}
	if cfg.NetOut != "" {
		if err := report.UpdateSumoNet(cfg.Net, cfg.NetOut); err != nil {
			log.Fatalln(err)
		}
	}
	if cfg.GeoJSON != "" {
		if err := report.ExportApproachesToGeoJSON(cfg.GeoJSON); err != nil {
			log.Fatalln(err)
		}
	}

	printReport(report)
	log.WithField("run", report.RunID.String()).Info(report.Summary())
}

// applyFlags overrides config values with flags set on command line
func applyFlags(cfg *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "net":
			cfg.Net = *netFileName
		case "utdf":
			cfg.UTDF = *utdfFileName
		case "out":
			cfg.Out = *out
		case "links-csv":
			cfg.LinksCSV = *linksCSV
		case "geojson":
			cfg.GeoJSON = *geojsonOut
		case "net-out":
			cfg.NetOut = *netOut
		case "workers":
			cfg.Workers = *workers
		case "program-id":
			cfg.ProgramID = *programID
		case "link-duration":
			cfg.LinkDuration = *linkDuration
		case "log.level":
			cfg.LogLevel = *logLevel
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
}

func printReport(report *utdf2sumo.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Intersection", "Status", "Phases", "Diagnostics"})
	for _, result := range report.Results {
		status := "ok"
		phases := ""
		notes := result.Diagnostics
		if result.Valid() {
			phases = fmt.Sprintf("%d (%d green)", len(result.Program.Phases), result.Program.GreenPhasesNum())
		} else {
			status = "failed"
			notes = append([]string{result.Err.Error()}, notes...)
		}
		table.Append([]string{
			result.ID,
			status,
			phases,
			strings.Join(notes, "; "),
		})
	}
	table.Render()
}
