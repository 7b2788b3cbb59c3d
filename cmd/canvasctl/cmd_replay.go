package main

import (
	"context"
	"errors"
	"fmt"

	"investigation-canvas/application/interaction"
	"investigation-canvas/application/services"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	"investigation-canvas/infrastructure/prompts"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type replayFlags struct {
	save   bool
	output string
}

func newReplayCmd(root *rootFlags) *cobra.Command {
	flags := &replayFlags{}
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay scripted gestures and prompt answers against a canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, root, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.save, "save", false, "save the canvas after the last step")
	f.StringVarP(&flags.output, "output", "o", "", "PNG file to write after the last step")
	return cmd
}

func runReplay(cmd *cobra.Command, root *rootFlags, flags *replayFlags, path string) error {
	ctx := cmd.Context()
	script, err := loadScript(path)
	if err != nil {
		return err
	}
	seed, err := loadSeed(script.Seed)
	if err != nil {
		return err
	}

	e, err := root.open(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	broker := prompts.NewBroker(0, e.logger)
	deps := e.sessionDeps()
	deps.Editor = broker
	deps.Confirmer = broker
	deps.Notifier = broker

	width, height := script.Width, script.Height
	if width == 0 {
		width = e.cfg.SurfaceWidth
	}
	if height == 0 {
		height = e.cfg.SurfaceHeight
	}

	session, stop, err := startSession(ctx, services.SessionOptions{
		InvestigationID: script.Investigation,
		Seed:            seed,
		Width:           width,
		Height:          height,
	}, deps)
	if err != nil {
		return err
	}
	defer stop()

	for i, step := range script.Steps {
		if err := replayStep(ctx, session, broker, step); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		e.logger.Debug("Replayed step", zap.Int("step", i+1))
	}

	settleCtx, cancel := context.WithTimeout(ctx, promptWait)
	defer cancel()
	if err := session.Settle(settleCtx); err != nil {
		if pending := broker.Pending(script.Investigation); len(pending) > 0 {
			return fmt.Errorf("script ended with %d unanswered prompt(s), first: %s", len(pending), describePrompt(pending[0]))
		}
		return err
	}

	if script.Save || flags.save {
		if err := <-session.Save(ctx); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	output := flags.output
	if output == "" {
		output = script.Output
	}
	if output != "" {
		if err := writeFrame(cmd, session, output); err != nil {
			return err
		}
	}

	return session.Inspect(ctx, func(v services.View) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Replayed %d step(s) on %s\n", len(script.Steps), script.Investigation)
		fmt.Fprintf(out, "  nodes: %d  connections: %d  unsaved: %t\n",
			v.Scene.NodeCount(), v.Scene.ConnectionCount(), v.Dirty)
		for _, n := range broker.Notices(script.Investigation) {
			fmt.Fprintf(out, "  %s: %s\n", n.Level, n.Message)
		}
		if output != "" {
			fmt.Fprintf(out, "  frame: %s\n", output)
		}
	})
}

func replayStep(ctx context.Context, session *services.Session, broker *prompts.Broker, step Step) error {
	switch {
	case step.Pointer != nil:
		kind, err := interaction.ParsePointerKind(step.Pointer.Type)
		if err != nil {
			return err
		}
		_, err = session.Dispatch(ctx, interaction.PointerEvent{
			Kind:     kind,
			Position: valueobjects.NewPosition(step.Pointer.X, step.Pointer.Y),
			Modifier: step.Pointer.Modifier,
		})
		return err

	case step.Add != "":
		_, err := session.AddNode(ctx, entities.NodeKind(step.Add))
		return err

	case step.Answer != nil:
		waitCtx, cancel := context.WithTimeout(ctx, promptWait)
		defer cancel()
		pending, err := broker.Wait(waitCtx, session.InvestigationID())
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("no prompt to answer")
		}
		if err != nil {
			return err
		}
		if err := broker.Resolve(pending.ID, step.Answer.answer()); err != nil {
			return err
		}
		return session.Settle(waitCtx)

	case step.Clear:
		// The confirm prompt is answered by a later step
		_ = session.Clear(ctx)
		return nil

	case step.DeleteConnection:
		_, err := session.DeleteSelectedConnection(ctx)
		return err

	case step.Resize != nil:
		return session.Resize(ctx, step.Resize.Width, step.Resize.Height)

	case step.Save:
		return <-session.Save(ctx)
	}
	return nil
}

func describePrompt(p prompts.Pending) string {
	if p.Kind == prompts.KindEdit && p.Fields != nil {
		return fmt.Sprintf("edit %q", p.Fields.Title)
	}
	return p.Message
}
