package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/service"
	"github.com/noah-isme/codemission/internal/view"
	"github.com/noah-isme/codemission/internal/viewstate"
)

// retryUploader and timeoutUploader adapt the analysis service to the upload form.
type retryUploader struct {
	analyses service.AnalysisService
	retries  int
}

func (r retryUploader) Upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) (models.AnalysisResult, error) {
	return r.analyses.UploadWithRetry(ctx, file, student, r.retries, progress)
}

type timeoutUploader struct {
	analyses service.AnalysisService
	timeout  time.Duration
}

func (t timeoutUploader) Upload(ctx context.Context, file api.File, student string, progress api.ProgressFunc) (models.AnalysisResult, error) {
	return t.analyses.UploadWithTimeout(ctx, file, student, t.timeout, progress)
}

type uploadOutcome struct {
	result models.AnalysisResult
	err    error
}

func newUploadCommand(a *app) *cobra.Command {
	var (
		student string
		retries int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "upload <archive>",
		Short: "Upload a zip or tar.gz project for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := api.OpenFile(args[0])
			if err != nil {
				return err
			}

			var uploader viewstate.Uploader = a.analyses
			switch {
			case timeout > 0:
				uploader = timeoutUploader{analyses: a.analyses, timeout: timeout}
			case retries > 0:
				uploader = retryUploader{analyses: a.analyses, retries: retries}
			}

			var result models.AnalysisResult
			if a.tty && !a.json {
				result, err = a.uploadInteractive(cmd.Context(), uploader, file, student)
			} else {
				result, err = a.uploadPlain(cmd.Context(), uploader, file, student)
			}
			if err != nil {
				return err
			}
			return a.render(result, func() string { return view.AnalysisDetail(result, a.now()) })
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&student, "student", "", "student name recorded with the analysis")
	flags.IntVar(&retries, "retries", 0, "extra attempts after a network, timeout or server failure")
	flags.DurationVar(&timeout, "timeout", 0, "give up after this long (overrides --retries)")
	return cmd
}

// uploadInteractive drives a progress bar. Ctrl+C in the bar cancels the request.
func (a *app) uploadInteractive(ctx context.Context, uploader viewstate.Uploader, file api.File, student string) (models.AnalysisResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(view.NewUploadModel(file.Name), tea.WithOutput(a.errOut))
	state := viewstate.NewUploadState(uploader, func(s viewstate.UploadSnapshot) {
		if s.IsUploading {
			program.Send(view.UploadProgressMsg(s.Progress))
		}
	})

	done := make(chan uploadOutcome, 1)
	go func() {
		result, err := state.Upload(ctx, file, student)
		msg := view.UploadDoneMsg{}
		if err != nil {
			msg.Message = state.Snapshot().UploadError
		} else {
			msg.Result = &result
		}
		program.Send(msg)
		done <- uploadOutcome{result: result, err: err}
	}()

	final, err := program.Run()
	if err != nil {
		cancel()
		<-done
		return models.AnalysisResult{}, err
	}
	if model, ok := final.(view.UploadModel); ok && model.Canceled() {
		cancel()
		<-done
		return models.AnalysisResult{}, errors.New("upload canceled")
	}

	outcome := <-done
	return outcome.result, outcome.err
}

// uploadPlain prints progress lines instead of a bar.
func (a *app) uploadPlain(ctx context.Context, uploader viewstate.Uploader, file api.File, student string) (models.AnalysisResult, error) {
	report := a.progressPrinter(file.Name)
	state := viewstate.NewUploadState(uploader, func(s viewstate.UploadSnapshot) {
		if s.IsUploading {
			report(s.Progress)
		}
	})
	return state.Upload(ctx, file, student)
}

func newCloneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <repository-url>",
		Short: "Analyze a public GitHub or GitLab repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.json {
				fmt.Fprintln(a.errOut, "Cloning and analyzing, this can take a few minutes...")
			}
			result, err := a.analyses.CloneRepository(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(result, func() string { return view.AnalysisDetail(result, a.now()) })
		},
	}
}
