package main

import (
	"fmt"
	"os"

	"investigation-canvas/application/services"

	"github.com/spf13/cobra"
)

type renderFlags struct {
	investigation string
	seed          string
	output        string
	width         int
	height        int
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved canvas, or a seed layout when none is saved, to PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.investigation, "investigation", "i", "", "investigation ID (required)")
	f.StringVar(&flags.seed, "seed", "", "seed records file (.json, .yaml) used when nothing is saved")
	f.StringVarP(&flags.output, "output", "o", "canvas.png", "PNG file to write")
	f.IntVar(&flags.width, "width", 0, "surface width in pixels (default from config)")
	f.IntVar(&flags.height, "height", 0, "surface height in pixels (default from config)")
	_ = cmd.MarkFlagRequired("investigation")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootFlags, flags *renderFlags) error {
	ctx := cmd.Context()
	e, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	seed, err := loadSeed(flags.seed)
	if err != nil {
		return err
	}

	width, height := flags.width, flags.height
	if width <= 0 {
		width = e.cfg.SurfaceWidth
	}
	if height <= 0 {
		height = e.cfg.SurfaceHeight
	}

	session, stop, err := startSession(ctx, services.SessionOptions{
		InvestigationID: flags.investigation,
		Seed:            seed,
		Width:           width,
		Height:          height,
	}, e.sessionDeps())
	if err != nil {
		return err
	}
	defer stop()

	if err := writeFrame(cmd, session, flags.output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", flags.output, width, height)
	return nil
}

func writeFrame(cmd *cobra.Command, session *services.Session, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := session.WriteFrame(cmd.Context(), out); err != nil {
		out.Close()
		return fmt.Errorf("render: %w", err)
	}
	return out.Close()
}
