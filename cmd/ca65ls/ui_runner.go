package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ca65ls/internal/buildpipeline"
	"ca65ls/internal/ui"
)

type scanOutcome struct {
	result buildpipeline.ScanResult
	err    error
}

func runScanWithUI(title string, files []string, req *buildpipeline.ScanRequest) (buildpipeline.ScanResult, error) {
	if req == nil {
		return buildpipeline.ScanResult{}, fmt.Errorf("missing scan request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Scan(&reqCopy)
		outcomeCh <- scanOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
