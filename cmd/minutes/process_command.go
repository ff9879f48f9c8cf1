package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thinkscotty/minutes/internal/pipeline"
	"github.com/thinkscotty/minutes/internal/transcribe"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var transcriptPath, audioPath, title string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one transcript or recording through the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (transcriptPath == "") == (audioPath == "") {
				return errors.New("exactly one of --transcript or --audio is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var res *pipeline.Result
			if transcriptPath != "" {
				data, err := os.ReadFile(transcriptPath)
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
				res, err = a.pipeline.ProcessTranscript(cmd.Context(), pipeline.TranscriptRequest{
					Transcript: string(data),
					Title:      title,
				})
				if err != nil {
					return err
				}
			} else {
				audio, closeFn, err := openAudio(audioPath)
				if err != nil {
					return err
				}
				defer closeFn()
				res, err = a.pipeline.ProcessAudio(cmd.Context(), pipeline.AudioRequest{Audio: audio, Title: title})
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to a plain-text transcript")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Path to an audio recording")
	cmd.Flags().StringVar(&title, "title", "", "Article title (generated when empty)")
	return cmd
}

func openAudio(path string) (transcribe.Audio, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return transcribe.Audio{}, nil, fmt.Errorf("open audio: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return transcribe.Audio{}, nil, fmt.Errorf("stat audio: %w", err)
	}
	return transcribe.Audio{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Data:        f,
	}, f.Close, nil
}

func renderResult(res *pipeline.Result) string {
	image := "none"
	if res.Image != nil {
		image = res.Image.Path()
	}
	rows := [][]string{
		{"Run", res.RunID},
		{"Title", res.Title},
		{"File", res.FilePath},
		{"Version", res.CommitHash},
		{"Backend", res.Backend},
		{"Image", image},
		{"Fallback keywords", yesNo(res.KeywordsFallback)},
	}
	if res.TranscriptLength > 0 {
		rows = append(rows, []string{"Transcript length", fmt.Sprint(res.TranscriptLength)})
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
