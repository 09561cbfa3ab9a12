package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/systree/internal/config"
	"github.com/san-kum/systree/internal/integrators"
	"github.com/san-kum/systree/internal/metrics"
	"github.com/san-kum/systree/internal/predict"
	"github.com/san-kum/systree/internal/storage"
	"github.com/san-kum/systree/internal/systree"
	"github.com/san-kum/systree/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

// loadScenario resolves --preset or a scenario file argument.
func loadScenario(args []string) (*config.Scenario, error) {
	if preset != "" {
		sc := config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return sc, nil
	}
	if len(args) == 0 {
		return nil, errors.New("need a scenario file or --preset")
	}
	return config.Load(args[0])
}

// buildTree builds sc with the named integrator, falling back to the
// scenario's choice, then the settings', then the built-in default.
func buildTree(sc *config.Scenario, name string) (*systree.Tree, error) {
	tree, err := sc.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", sc.Name, err)
	}
	name = cmp.Or(name, sc.Integrator, settings.Integrator, config.DefaultIntegrator)
	integ, ok := integrators.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, integrators.Names())
	}
	tree.SetIntegrator(integ)
	return tree, nil
}

func stepCount(cmd *cobra.Command, sc *config.Scenario) int {
	if cmd.Flags().Changed("steps") && steps > 0 {
		return steps
	}
	if sc.Steps > 0 {
		return sc.Steps
	}
	if settings.Steps > 0 {
		return settings.Steps
	}
	return config.DefaultSteps
}

// driftMetrics measures owner against the source pulling hardest on it.
func driftMetrics(tree *systree.Tree, owner string) []metrics.Metric {
	if owner == "" {
		return nil
	}
	src, ok := metrics.Dominant(tree, owner)
	if !ok {
		logger.Warn("no source to measure against", "owner", owner)
		return nil
	}
	center := metrics.SourceCenter(src)
	logger.Debug("tracking", "owner", owner, "source", src.Source.Name, "path", src.Path)
	return []metrics.Metric{
		metrics.NewRadialDrift(owner, center),
		metrics.NewEnergyDrift(owner, src.Source.Mass, center),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	tree, err := buildTree(sc, integrator)
	if err != nil {
		return err
	}
	n := stepCount(cmd, sc)

	collector := metrics.NewCollector(sc.Name, driftMetrics(tree, track)...)
	tree.SetObserver(collector)

	logger.Info("running", "scenario", sc.Name, "steps", n, "integrator", tree.Integrator().Name(), "bodies", tree.Count())
	start := time.Now()

	reports := tree.Bodies()
	for i := 0; i < n; i++ {
		reports = append(reports, collector.Step(tree)...)
	}
	elapsed := time.Since(start)
	summary := collector.Summary()

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("final time: %d\n", tree.Time())
	fmt.Printf("reports: %d\n", len(reports))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(summary) {
		fmt.Printf("  %s: %.6g\n", name, summary[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Scenario:   sc.Name,
		Integrator: tree.Integrator().Name(),
		Steps:      n,
		FinalTime:  tree.Time(),
		Bodies:     tree.Count(),
		Metrics:    summary,
	}, reports, sc)
	if err != nil {
		return err
	}
	logger.Info("saved", "run", runID, "dir", st.Dir())
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && len(args) == 0 {
		return viz.RunInteractive()
	}
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	tree, err := buildTree(sc, integrator)
	if err != nil {
		return err
	}

	fps := frameRate
	if fps <= 0 {
		fps = settings.FPS
	}
	collector := metrics.NewCollector(sc.Name)

	if addr := settings.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("serving metrics", "addr", addr)
	}

	return viz.Run(tree, viz.Options{
		Name:      sc.Name,
		FPS:       fps,
		Speed:     speed,
		Theme:     theme,
		Collector: collector,
	})
}

func runPredict(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	tree, err := buildTree(sc, "")
	if err != nil {
		return err
	}
	n := stepCount(cmd, sc)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	paths := make(map[string][]systree.Report)
	if owner != "" {
		p := predict.Start(ctx, tree, owner, n)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
	wait:
		for {
			select {
			case <-p.Done():
				break wait
			case <-ticker.C:
				logger.Info("predicting", "owner", owner, "samples", p.Len())
			}
		}
		if err := p.Wait(); err != nil {
			return err
		}
		paths[owner] = p.Path()
	} else {
		owners := storage.Owners(tree.Bodies())
		logger.Info("predicting", "owners", len(owners), "steps", n, "workers", limit)
		if paths, err = predict.All(ctx, tree, owners, n, limit); err != nil {
			return err
		}
	}

	for _, o := range sortedKeys(paths) {
		path := paths[o]
		if len(path) == 0 {
			fmt.Printf("%s: no forecast\n", o)
			continue
		}
		last := path[len(path)-1]
		fmt.Printf("%s: %d samples, at t=%d (%.2f, %.2f)\n", o, len(path), last.Time, last.Body.Position.X, last.Body.Position.Y)
		if len(path) > 1 {
			fmt.Println(asciigraph.Plot(distances(path),
				asciigraph.Height(8),
				asciigraph.Width(70),
				asciigraph.Caption(o+" distance from origin"),
			))
			fmt.Println()
		}
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	if preset == "" && len(args) == 0 {
		preset = "escape"
	}
	sc, err := loadScenario(args)
	if err != nil {
		return err
	}
	n := stepCount(cmd, sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tBODY\tRADIAL DRIFT\tENERGY DRIFT\tTIME")

	for _, name := range integrators.Names() {
		tree, err := buildTree(sc, name)
		if err != nil {
			return err
		}
		o := track
		if o == "" {
			if owners := storage.Owners(tree.Bodies()); len(owners) > 0 {
				o = owners[0]
			}
		}
		ms := driftMetrics(tree, o)
		if len(ms) == 0 {
			return fmt.Errorf("nothing to compare in %s", sc.Name)
		}
		collector := metrics.NewCollector(sc.Name, ms...)
		tree.SetObserver(collector)

		start := time.Now()
		for i := 0; i < n; i++ {
			collector.Step(tree)
		}
		s := collector.Summary()
		fmt.Fprintf(w, "%s\t%s\t%.6g\t%.6g\t%v\n", name, o, s["radial_drift"], s["energy_drift"], time.Since(start).Round(time.Microsecond))
	}
	return w.Flush()
}

func validateScenario(cmd *cobra.Command, args []string) error {
	sc, err := config.Load(args[0])
	if err != nil {
		return err
	}
	tree, err := buildTree(sc, "")
	if err != nil {
		var be *systree.BuildError
		if errors.As(err, &be) {
			return fmt.Errorf("invalid system %s: %w", be.Path, be.Wrapped)
		}
		return err
	}

	fmt.Printf("%s: ok (%d bodies, integrator %s)\n", sc.Name, tree.Count(), tree.Integrator().Name())
	tree.Walk(func(v systree.NodeView) {
		fmt.Printf("%s%s tick=%d radius=%g sources=%d bodies=%d mass=%g\n",
			strings.Repeat("  ", v.Depth+1), v.Path, v.Tick, v.Radius, v.Sources, v.Owned, v.Mass)
	})
	return nil
}

func distances(path []systree.Report) []float64 {
	out := make([]float64, len(path))
	for i, r := range path {
		out[i] = r2.Norm(r.Body.Position)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
