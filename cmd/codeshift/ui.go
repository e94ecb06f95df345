package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"codeshift/internal/pipeline"
	"codeshift/internal/source"
	"codeshift/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type runOutcome struct {
	bundle *pipeline.Bundle
	err    error
}

// runWithUI runs the pipeline in the background and renders its progress
// until the run finishes.
func runWithUI(ctx context.Context, title string, cfg pipeline.Config, files []*source.File) (*pipeline.Bundle, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		runCfg := cfg
		runCfg.Progress = pipeline.ChannelSink(events)
		b, err := pipeline.RunBundle(ctx, runCfg, files)
		outcomeCh <- runOutcome{bundle: b, err: err}
		close(events)
	}()

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	select {
	case outcome := <-outcomeCh:
		outcomeCh <- outcome
	default:
		// the user quit before the run finished
		cancel()
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.bundle, uiErr
	}
	return outcome.bundle, outcome.err
}
