package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/systree/internal/storage"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTEPS\tFINAL\tBODIES\tREPORTS\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.FinalTime,
			run.Bodies,
			run.Reports,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	reports, err := st.LoadReports(runID)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	if sc, err := st.LoadScenario(runID); err == nil && sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	} else if err != nil && !errors.Is(err, storage.ErrRunNotFound) {
		logger.Warn("stored scenario unreadable", "run", runID, "error", err)
	}
	fmt.Printf("reports: %d\n\n", len(reports))

	owners := storage.Owners(reports)
	if owner != "" {
		owners = []string{owner}
	}
	if len(owners) > maxPlots {
		logger.Info("plotting first bodies only", "shown", maxPlots, "total", len(owners))
		owners = owners[:maxPlots]
	}

	for _, o := range owners {
		path := storage.Trajectory(reports, o)
		if len(path) < 2 {
			fmt.Printf("%s: %d samples, nothing to plot\n\n", o, len(path))
			continue
		}
		graph := asciigraph.Plot(distances(path),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from origin, t=%d..%d", o, path[0].Time, path[len(path)-1].Time)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	reports, err := st.LoadReports(runID)
	if err != nil {
		return err
	}

	data := storage.NewExport(*meta, reports)
	if output == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(output, data); err != nil {
		return err
	}
	logger.Info("exported", "run", runID, "file", output, "bodies", len(data.Bodies))
	return nil
}
