package main

import (
	"io"
	"runtime"
	"strconv"
	"text/template"
	"time"

	"github.com/plus3/visora/treecs"
)

type Report struct {
	// Configuration
	Scenario Scenario
	Mounted  int

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	Counters       FrameCounters
	Passes         *treecs.PassesStats
	TreeStart      treecs.TreeStats
	TreeEnd        treecs.TreeStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Treecs Stress Report

## Scenario
- **Name:** {{.Scenario.Name}}
- **Run Duration:** {{.Scenario.Duration}}
- **Shape:** depth {{.Scenario.Depth}}, fanout {{.Scenario.Fanout}}, churn {{.Scenario.Churn}} subtrees/frame
- **Initially Mounted:** {{.Mounted}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}
- **Mounted / Unmounted:** {{.Counters.Mounted}} / {{.Counters.Unmounted}}
- **Rendered:** {{.Counters.RenderedBytes | mb}} MiB
{{if .Passes}}
## Passes
{{range .Passes.Passes}}- {{.Name}}: {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}{{end}}
## Tree
- Entities:   {{.TreeStart.EntityCount}} (start) -> {{.TreeEnd.EntityCount}} (end)
- Free Slots: {{.TreeStart.FreeSlots}} (start) -> {{.TreeEnd.FreeSlots}} (end)
- Max Depth:  {{.TreeEnd.MaxDepth}}
- Components: {{range .TreeEnd.ComponentBreakdown}}{{.Name}}={{.Count}} {{end}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v int64) string {
		return strconv.FormatFloat(float64(v)/1024/1024, 'f', 2, 64)
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
