package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sfcc/internal/buildpipeline"
	"sfcc/internal/ui"
)

var errBuildAborted = errors.New("build aborted")

// runBuildWithUI runs the build in the background and renders its events.
// Leaving the view early cancels the build.
func runBuildWithUI(ctx context.Context, title string, files []string, req *buildpipeline.BuildRequest) (buildpipeline.BuildResult, error) {
	if req == nil {
		return buildpipeline.BuildResult{}, fmt.Errorf("missing build request")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan buildpipeline.Event, 2*len(files)+8)
	type outcome struct {
		res buildpipeline.BuildResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(events)
		bg := *req
		bg.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &bg)
		done <- outcome{res, err}
	}()

	final, uiErr := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stdout)).Run()
	aborted := uiErr == nil && ui.Aborted(final)
	if uiErr != nil || aborted {
		cancel()
		// никто больше не читает канал, дочитываем до закрытия
		for range events {
		}
	}
	out := <-done
	switch {
	case uiErr != nil:
		return out.res, uiErr
	case aborted:
		return out.res, errBuildAborted
	}
	return out.res, out.err
}
