package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cbridge/internal/pipeline"
	"cbridge/internal/ui"
)

type genOutcome struct {
	result *pipeline.Result
	err    error
}

// runGenWithUI runs the pipeline in the background and shows its
// progress until the last event.
func runGenWithUI(ctx context.Context, title string, modules []string, req *pipeline.Request) (*pipeline.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing generate request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan genOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, &reqCopy)
		outcomeCh <- genOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, modules, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// интерфейс мог закрыться раньше пайплайна
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
