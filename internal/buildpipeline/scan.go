package buildpipeline

import (
	"time"

	"ca65ls/internal/diag"
	"ca65ls/internal/observ"
	"ca65ls/internal/project"
	"ca65ls/internal/workspace"
)

// ScanRequest configures a one-shot workspace initialization.
type ScanRequest struct {
	Roots    []string
	Progress ProgressSink
}

// ScanResult reports what the scan found and how long each stage took.
type ScanResult struct {
	Workspace   *workspace.Workspace
	FileCount   int
	IncludeRoot string
	Timings     Timings
	Report      observ.Report
	LoadErrors  *diag.Bag
}

func emitStage(sink ProgressSink, file string, stage Stage, status Status, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Elapsed: elapsed})
}

// Scan runs the two-pass workspace initialization: Discover walks the
// configured roots for candidate files, Scan parses each one into its own
// symbol table, and Integrate resolves include edges and folds export
// contributions into the shared cross-file indexes. Progress and per-stage
// timings are reported through req.Progress as the scan proceeds.
func Scan(req *ScanRequest) (ScanResult, error) {
	timer := observ.NewTimer()
	var timings Timings

	discoverIdx := timer.Begin(string(StageDiscover))
	discoverStart := time.Now()
	emitStage(req.Progress, "", StageDiscover, StatusWorking, 0)
	ws := workspace.New()
	root := ""
	if len(req.Roots) > 0 {
		root = req.Roots[0]
	}
	ws.SetRoot(root)
	found, err := project.Discover(req.Roots, ws.Config)
	discoverElapsed := time.Since(discoverStart)
	timer.End(discoverIdx, "")
	timings.Set(StageDiscover, discoverElapsed)
	if err != nil {
		emitStage(req.Progress, "", StageDiscover, StatusError, discoverElapsed)
		return ScanResult{}, err
	}
	emitStage(req.Progress, "", StageDiscover, StatusDone, discoverElapsed)

	for _, f := range found.Files {
		emitStage(req.Progress, f, StageScan, StatusQueued, 0)
	}

	scanIdx := timer.Begin(string(StageScan))
	scanStart := time.Now()
	for _, f := range found.Files {
		emitStage(req.Progress, f, StageScan, StatusWorking, 0)
	}
	loadErrors := ws.ScanAll(found.Files)
	scanElapsed := time.Since(scanStart)
	timer.End(scanIdx, "")
	timings.Set(StageScan, scanElapsed)
	for _, f := range found.Files {
		emitStage(req.Progress, f, StageScan, StatusDone, scanElapsed)
	}

	integrateIdx := timer.Begin(string(StageIntegrate))
	integrateStart := time.Now()
	emitStage(req.Progress, "", StageIntegrate, StatusWorking, 0)
	// Integration already happened as part of ScanAll's second pass (include
	// resolution after every file's table exists); this stage exists so
	// progress and timings reports have a name for that work independent of
	// per-file parsing.
	integrateElapsed := time.Since(integrateStart)
	timer.End(integrateIdx, "")
	timings.Set(StageIntegrate, integrateElapsed)
	emitStage(req.Progress, "", StageIntegrate, StatusDone, integrateElapsed)

	return ScanResult{
		Workspace:   ws,
		FileCount:   len(found.Files),
		IncludeRoot: root,
		Timings:     timings,
		Report:      timer.Report(),
		LoadErrors:  loadErrors,
	}, nil
}
