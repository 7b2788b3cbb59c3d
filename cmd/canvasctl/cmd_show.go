package main

import (
	"fmt"
	"io"
	"strings"

	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/entities"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	heading = color.New(color.FgHiGreen, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	event   = color.New(color.FgCyan)
	note    = color.New(color.FgYellow)
)

func newShowCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [investigation]",
		Short: "List saved canvases, or summarise one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				ids, err := e.storage.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					subtle.Fprintln(out, "No saved canvases")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			scene, err := e.storage.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if scene == nil {
				return fmt.Errorf("no saved canvas for %s", args[0])
			}
			printScene(out, scene)
			return nil
		},
	}
}

func newDeleteCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <investigation>",
		Short: "Delete a saved canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.storage.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func printScene(out io.Writer, scene *aggregates.Scene) {
	heading.Fprintf(out, "%s\n", scene.InvestigationID())
	subtle.Fprintf(out, "  %d node(s), %d connection(s)\n", scene.NodeCount(), scene.ConnectionCount())

	titles := make(map[string]string, scene.NodeCount())
	for _, n := range scene.Nodes() {
		titles[n.ID().String()] = n.Title()

		label := event
		if n.Kind() == entities.KindAnnotation {
			label = note
		}
		pos := n.Position()
		fmt.Fprintf(out, "  %s %-40s %s\n",
			label.Sprintf("%-10s", n.Kind()),
			truncate(n.Title(), 40),
			subtle.Sprintf("(%.0f, %.0f)", pos.X(), pos.Y()))
	}

	for _, c := range scene.Connections() {
		fmt.Fprintf(out, "  %s -> %s\n", titles[c.From().String()], titles[c.To().String()])
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
