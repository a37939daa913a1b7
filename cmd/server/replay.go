package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/engine"
)

var replayFlags struct {
	file   string
	doc    string
	strict bool
	render bool
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Apply a JSON-lines command stream to a board and print the result",
	Long: `replay feeds each line of --file to a fresh engine as one command and
prints the final document, or the final render frame with --render.
Lines that are empty or start with # are skipped.`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayFlags.file, "file", "f", "", "command stream, one JSON command per line (required)")
	replayCmd.Flags().StringVar(&replayFlags.doc, "doc", "", "starting document JSON (default: an empty board)")
	replayCmd.Flags().BoolVar(&replayFlags.strict, "strict", false, "stop at the first failing command")
	replayCmd.Flags().BoolVar(&replayFlags.render, "render", false, "print the render frame instead of the document")
	replayCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	var opts []engine.Option
	if replayFlags.doc != "" {
		data, err := os.ReadFile(replayFlags.doc)
		if err != nil {
			return err
		}
		var doc document.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode %s: %w", replayFlags.doc, err)
		}
		opts = append(opts, engine.WithDocument(&doc))
	}

	app, err := engine.New(opts...)
	if err != nil {
		return err
	}

	f, err := os.Open(replayFlags.file)
	if err != nil {
		return err
	}
	defer f.Close()

	applied, failed, err := replay(app, f, replayFlags.strict)
	if err != nil {
		return err
	}
	slog.Info("replay finished", "applied", applied, "failed", failed)

	out := cmd.OutOrStdout()
	if replayFlags.render {
		frame, err := engine.FrameToJSON(app.Render())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, frame)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(app.Serialize())
}

// replay applies every command in r. Failing commands are logged and
// skipped unless strict is set.
func replay(app *engine.App, r io.Reader, strict bool) (applied, failed int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		c, err := engine.ParseCommand(text)
		if err == nil {
			err = app.Apply(c)
		}
		if err != nil {
			if strict {
				return applied, failed + 1, fmt.Errorf("line %d: %w", line, err)
			}
			slog.Warn("command failed", "line", line, "error", err)
			failed++
			continue
		}
		applied++
	}
	return applied, failed, sc.Err()
}
