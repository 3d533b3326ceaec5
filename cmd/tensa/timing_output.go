package main

import (
	"fmt"
	"io"
	"time"

	"tensa/internal/buildpipeline"
)

var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageParse:    "parsed",
	buildpipeline.StageCheck:    "checked",
	buildpipeline.StageGenerate: "generated",
	buildpipeline.StagePrint:    "printed",
	buildpipeline.StageWrite:    "written",
}

// printStageTimings prints the summed duration of every recorded stage.
// Sums cover all files, so with several jobs they can exceed the wall time.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%9s %8.1f ms\n", stageVerbs[stage], toMillis(timings.Duration(stage))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%9s %8.1f ms\n", "total", toMillis(timings.Total()))
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
