package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/attachment"
	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/internal/observability"
	"github.com/signalsfoundry/leo-routing-sim/model"
	"github.com/signalsfoundry/leo-routing-sim/position"
	"github.com/signalsfoundry/leo-routing-sim/routing/linkstate"
	"github.com/signalsfoundry/leo-routing-sim/simulation"
	"github.com/signalsfoundry/leo-routing-sim/timectrl"
)

// ISS-derived TLEs spread across a plane; enough to exercise the full
// pipeline without a constellation definition file.
var demoTLEs = [][2]string{
	{
		"1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
		"2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
	},
	{
		"1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9991",
		"2 25544  51.6459 115.9059 0001817  61.3028 125.9198 15.49370953257761",
	},
	{
		"1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9992",
		"2 25544  51.6459 115.9059 0001817  61.3028 215.9198 15.49370953257762",
	},
	{
		"1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9993",
		"2 25544  51.6459 115.9059 0001817  61.3028 305.9198 15.49370953257763",
	},
}

func main() {
	algorithm := flag.String("algorithm", linkstate.Name, "routing algorithm")
	strategy := flag.String("attachment", attachment.NearestName, "attachment strategy")
	duration := flag.Duration("duration", 60*time.Second, "total simulation duration")
	step := flag.Duration("step", 1*time.Second, "timestep size")
	offset := flag.Duration("offset", 0, "simulation start offset")
	metricsAddr := flag.String("metrics-addr", "", "address for the Prometheus /metrics endpoint (disabled when empty)")
	out := flag.String("o", "", "write records as JSON to this file (stdout when empty)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fatal(ctx, log, "tracing init failed", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	var metrics *observability.SimCollector
	if *metricsAddr != "" {
		metrics, err = observability.NewSimCollector(nil)
		if err != nil {
			fatal(ctx, log, "metrics init failed", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error(ctx, "metrics server stopped", logging.Any("error", err))
			}
		}()
	}

	epoch := time.Date(2021, 10, 2, 14, 11, 0, 0, time.UTC)
	spec := model.ConstellationSpec{
		Orbits:        1,
		SatsPerOrbit:  len(demoTLEs),
		Epoch:         epoch,
		MaxISLLengthM: 60_000_000,
		MaxGSLLengthM: 60_000_000,
	}

	sats := make([]model.Satellite, len(demoTLEs))
	for i, tle := range demoTLEs {
		sats[i] = model.Satellite{ID: model.NodeID(i), TLELine1: tle[0], TLELine2: tle[1]}
	}

	// Ring ISLs within the plane.
	isls := make([]model.ISL, 0, len(sats))
	for i := range sats {
		isls = append(isls, model.ISL{A: sats[i].ID, B: sats[(i+1)%len(sats)].ID})
	}

	stations := []model.GroundStation{
		groundStation(100, "Nairobi", -1.2921, 36.8219, 1795),
		groundStation(101, "Quito", -0.1807, -78.4678, 2850),
	}

	ifaces := make([]model.InterfaceDescriptor, 0, len(sats)+len(stations))
	for _, s := range sats {
		ifaces = append(ifaces, model.InterfaceDescriptor{NodeID: s.ID, InterfaceCount: 3, AggregateMaxBandwidth: 10.0})
	}
	for _, gs := range stations {
		ifaces = append(ifaces, model.InterfaceDescriptor{NodeID: gs.ID, InterfaceCount: 1, AggregateMaxBandwidth: 1.0})
	}

	provider, err := position.NewSGP4Provider(sats)
	if err != nil {
		fatal(ctx, log, "provider init failed", err)
	}

	driver, err := simulation.NewDriver(simulation.Config{
		Spec:               spec,
		Satellites:         sats,
		GroundStations:     stations,
		ISLs:               isls,
		Interfaces:         ifaces,
		Schedule:           timectrl.Schedule{Offset: *offset, End: *offset + *duration, Step: *step},
		Algorithm:          *algorithm,
		AttachmentStrategy: *strategy,
		Provider:           provider,
		Log:                log,
		Metrics:            metrics,
	})
	if err != nil {
		fatal(ctx, log, "invalid configuration", err)
	}

	records := driver.Run(ctx)
	if n := len(records); n > 0 && records[n-1].Err != nil {
		fatal(ctx, log, "run failed", records[n-1].Err)
	}

	if err := dump(records, *out); err != nil {
		fatal(ctx, log, "writing records failed", err)
	}
}

func groundStation(id model.NodeID, name string, latDeg, lonDeg, elevM float64) model.GroundStation {
	x, y, z := position.GeodeticToECEF(latDeg, lonDeg, elevM)
	return model.GroundStation{
		ID: id, Name: name,
		LatitudeDeg: latDeg, LongitudeDeg: lonDeg, ElevationM: elevM,
		X: x, Y: y, Z: z,
	}
}

func dump(records []simulation.Record, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func fatal(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.Any("error", err))
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
