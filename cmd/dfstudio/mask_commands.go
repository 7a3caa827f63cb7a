package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/canvas"
	"github.com/parthubhe/DeepFakeStudio/internal/geometry"
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
	"github.com/parthubhe/DeepFakeStudio/internal/session"
	"github.com/parthubhe/DeepFakeStudio/internal/textutil"
)

func newMaskCommand(ctx *commandContext) *cobra.Command {
	maskCmd := &cobra.Command{
		Use:   "mask",
		Short: "Inspect and edit clip masks",
	}
	maskCmd.AddCommand(newMaskShowCommand(ctx))
	maskCmd.AddCommand(newMaskEditCommand(ctx))
	return maskCmd
}

func newMaskShowCommand(ctx *commandContext) *cobra.Command {
	var pass int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <project> <clip-id>",
		Short: "Show the saved mask points for a clip pass",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *backend.Client) error {
				points, err := client.LoadMask(cmd.Context(), args[0], args[1], pass)
				if err != nil {
					if errors.Is(err, backend.ErrNotFound) {
						fmt.Fprintf(cmd.OutOrStdout(), "No saved mask for %s pass %d\n", args[1], pass)
						return nil
					}
					return fmt.Errorf("load mask: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, points)
				}

				rows := make([][]string, 0, points.Len())
				for _, p := range points.Positive {
					rows = append(rows, []string{"positive", formatCoord(p.X), formatCoord(p.Y)})
				}
				for _, p := range points.Negative {
					rows = append(rows, []string{"negative", formatCoord(p.X), formatCoord(p.Y)})
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintf(out, "Mask for %s pass %d is empty\n", args[1], pass)
					return nil
				}
				headers := []string{"Label", "X", "Y"}
				aligns := []columnAlignment{alignLeft, alignRight, alignRight}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&pass, "pass", 1, "Pass number to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func newMaskEditCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <project> <clip-id>",
		Short: "Edit a clip's masks interactively",
		Long: `Edit a clip's masks interactively.

Points are entered in preview coordinates and mapped to the project's native
resolution. Commands:

  pos <x> <y>     add a positive (include) point
  neg <x> <y>     add a negative (exclude) point
  frame <n>       jump the preview to another frame
  pass <n>        switch to another pass (saves the current one first)
  points          list the current pass's points
  save            save progress for the current pass
  preview [path]  render the annotated preview to a PNG
  reset           discard the saved mask for the current pass
  submit          save and queue the clip, then exit
  quit            discard unsaved points and exit`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaskEdit(cmd, ctx, args[0], args[1])
		},
	}
	return cmd
}

type maskEditor struct {
	cmd     *cobra.Command
	ctx     *commandContext
	client  *backend.Client
	sess    *session.Session
	canvas  *canvas.Canvas
	project string
	out     io.Writer
}

func runMaskEdit(cmd *cobra.Command, ctx *commandContext, project, clipID string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	client, err := ctx.ensureClient()
	if err != nil {
		return err
	}

	proj, err := client.Project(cmd.Context(), project)
	if err != nil {
		return fmt.Errorf("read project %s: %w", project, err)
	}
	var clip *backend.ClipState
	for i := range proj.Clips {
		if proj.Clips[i].ClipID == clipID {
			clip = &proj.Clips[i]
			break
		}
	}
	if clip == nil {
		return fmt.Errorf("clip %s not found in %s", clipID, project)
	}

	sess, err := session.Open(cmd.Context(), session.Options{
		API:      client,
		Project:  project,
		Clip:     *clip,
		StateDir: cfg.Paths.StateDir,
		Logger:   ctx.ensureLogger(),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	resolution, _ := cfg.ResolutionFor(project)
	mapper := geometry.NewMapperForDisplayWidth(float64(cfg.Editor.PreviewWidth), resolution.Width, resolution.Height)
	cv := canvas.New(mapper, resolution.Width, resolution.Height, cfg.Editor.StrictButtons,
		func(label mask.Label, p mask.Point) mask.PointSet {
			set, addErr := sess.AddPoint(label, p)
			if addErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "cannot add point: %v\n", addErr)
				return sess.Points()
			}
			return set
		})

	editor := &maskEditor{
		cmd:     cmd,
		ctx:     ctx,
		client:  client,
		sess:    sess,
		canvas:  cv,
		project: project,
		out:     cmd.OutOrStdout(),
	}
	editor.refreshFrame()
	cv.Render(sess.Points())

	fmt.Fprintf(editor.out, "Editing %s (%s), pass %d of %d. Type 'help' for commands.\n",
		clipID, textutil.DisplayName(project), sess.ActivePass(), len(clip.Actions))
	if !clip.Editable() {
		fmt.Fprintln(editor.out, "This clip passes through unchanged; masks cannot be edited.")
	}

	return editor.loop()
}

func (e *maskEditor) loop() error {
	scanner := bufio.NewScanner(e.cmd.InOrStdin())
	for {
		fmt.Fprintf(e.out, "pass %d> ", e.sess.ActivePass())
		if !scanner.Scan() {
			fmt.Fprintln(e.out, "\nSession closed; unsaved points discarded")
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		done, err := e.dispatch(fields)
		if err != nil {
			fmt.Fprintf(e.out, "error: %v\n", err)
			continue
		}
		if done {
			return nil
		}
	}
}

func (e *maskEditor) dispatch(fields []string) (bool, error) {
	switch fields[0] {
	case "pos", "neg":
		return false, e.addPoint(fields)
	case "frame":
		return false, e.jumpFrame(fields)
	case "pass":
		return false, e.switchPass(fields)
	case "points":
		e.listPoints()
		return false, nil
	case "save":
		if err := e.sess.SaveProgress(e.cmd.Context()); err != nil {
			return false, err
		}
		fmt.Fprintln(e.out, "Progress saved")
		return false, nil
	case "preview":
		return false, e.writePreview(fields)
	case "reset":
		confirmed, err := confirmDestructive(e.cmd, fmt.Sprintf(
			"This permanently deletes the saved mask for pass %d.", e.sess.ActivePass()))
		if err != nil {
			return false, err
		}
		if !confirmed {
			fmt.Fprintln(e.out, "Reset aborted")
			return false, nil
		}
		if err := e.sess.ResetPass(e.cmd.Context(), true); err != nil {
			return false, err
		}
		e.canvas.Render(e.sess.Points())
		fmt.Fprintln(e.out, "Mask reset")
		return false, nil
	case "submit":
		if err := e.sess.Submit(e.cmd.Context()); err != nil {
			return false, err
		}
		fmt.Fprintln(e.out, "Clip saved and queued")
		return true, nil
	case "quit", "exit":
		fmt.Fprintln(e.out, "Unsaved points discarded")
		return true, nil
	case "help":
		fmt.Fprintln(e.out, e.cmd.Long)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}

func (e *maskEditor) addPoint(fields []string) error {
	if len(fields) != 3 {
		return fmt.Errorf("usage: %s <x> <y>", fields[0])
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q", fields[1])
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q", fields[2])
	}

	ev := canvas.PointerEvent{ClientX: x, ClientY: y, Button: canvas.ButtonPrimary}
	if fields[0] == "neg" {
		ev.Shift = true
		if e.canvas.SuppressContextMenu() {
			ev.Button = canvas.ButtonSecondary
		}
	}
	if !e.canvas.HandlePointer(ev) {
		return errors.New("point rejected")
	}
	set := e.sess.Points()
	fmt.Fprintf(e.out, "%d positive, %d negative\n", len(set.Positive), len(set.Negative))
	return nil
}

func (e *maskEditor) jumpFrame(fields []string) error {
	if len(fields) != 2 {
		return errors.New("usage: frame <n>")
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil || index < 0 {
		return fmt.Errorf("invalid frame %q", fields[1])
	}
	if err := e.sess.JumpToFrame(e.cmd.Context(), index); err != nil {
		return err
	}
	e.refreshFrame()
	e.canvas.Render(e.sess.Points())
	fmt.Fprintf(e.out, "Frame %d loaded\n", index)
	return nil
}

func (e *maskEditor) switchPass(fields []string) error {
	if len(fields) != 2 {
		return errors.New("usage: pass <n>")
	}
	target, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid pass %q", fields[1])
	}
	if err := e.sess.SwitchPass(e.cmd.Context(), target); err != nil {
		return err
	}
	e.canvas.Render(e.sess.Points())
	set := e.sess.Points()
	fmt.Fprintf(e.out, "Now editing pass %d (%d positive, %d negative)\n",
		target, len(set.Positive), len(set.Negative))
	return nil
}

func (e *maskEditor) listPoints() {
	set := e.sess.Points()
	if set.IsEmpty() {
		fmt.Fprintln(e.out, "No points on this pass")
		return
	}
	for _, p := range set.Positive {
		fmt.Fprintf(e.out, "  + %s,%s\n", formatCoord(p.X), formatCoord(p.Y))
	}
	for _, p := range set.Negative {
		fmt.Fprintf(e.out, "  - %s,%s\n", formatCoord(p.X), formatCoord(p.Y))
	}
}

func (e *maskEditor) writePreview(fields []string) error {
	cfg, err := e.ctx.ensureConfig()
	if err != nil {
		return err
	}
	path := ""
	if len(fields) > 1 {
		path = fields[1]
	}
	if path == "" {
		name := fmt.Sprintf("%s-%s-pass%d.png", e.project, e.sess.Clip().ClipID, e.sess.ActivePass())
		path = filepath.Join(cfg.Paths.PreviewDir, name)
	}

	e.canvas.Render(e.sess.Points())
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	defer file.Close()
	if err := e.canvas.EncodePNG(file); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	fmt.Fprintf(e.out, "Preview written to %s\n", path)
	return nil
}

// refreshFrame downloads and decodes the session's current frame image. A
// failed fetch leaves the canvas without a background; annotation still
// works.
func (e *maskEditor) refreshFrame() {
	url := e.sess.FrameURL()
	if url == "" {
		e.canvas.SetFrame(nil)
		return
	}
	data, err := e.client.FetchBytes(e.cmd.Context(), url)
	if err != nil {
		fmt.Fprintf(e.out, "frame unavailable: %v\n", err)
		e.canvas.SetFrame(nil)
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(e.out, "frame decode failed: %v\n", err)
		e.canvas.SetFrame(nil)
		return
	}
	e.canvas.SetFrame(img)
}
