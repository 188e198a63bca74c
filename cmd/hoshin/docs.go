package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/export"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/status"
)

// withApp opens the project for the duration of fn.
func withApp(flags *cliFlags, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

func newNewCmd(flags *cliFlags) *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create an empty hoshin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				name := strings.TrimSpace(refArg(args))
				if name == "" {
					docs, err := a.repo.List(ctx)
					if err != nil {
						return fmt.Errorf("list documents: %w", err)
					}
					name = hoshin.NextDefaultName(docs)
				}
				doc := hoshin.NewDocument(name)
				if strings.TrimSpace(prompt) != "" {
					doc = hoshin.SetPromptBlank(doc, prompt)
				}
				if err := a.repo.Upsert(ctx, doc); err != nil {
					return fmt.Errorf("save document: %w", err)
				}
				a.log.Info("created document", zap.String("id", doc.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", doc.Name, doc.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "the goal that completes the prompt question")
	return cmd
}

func newListCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hoshins, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				docs, err := a.repo.List(ctx)
				if err != nil {
					return fmt.Errorf("list documents: %w", err)
				}
				printList(cmd.OutOrStdout(), status.ListStatuses(docs))
				return nil
			})
		},
	}
}

func newShowCmd(flags *cliFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id|name]",
		Short: "Print a hoshin's statements and directions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				doc, err := a.resolve(ctx, refArg(args))
				if err != nil {
					return err
				}
				if asJSON {
					out, err := json.MarshalIndent(doc, "", "  ")
					if err != nil {
						return fmt.Errorf("marshal JSON: %w", err)
					}
					_, err = cmd.OutOrStdout().Write(append(out, '\n'))
					return err
				}
				printDocument(cmd.OutOrStdout(), doc)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	return cmd
}

func newStatusCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status [id|name]",
		Short: "Show which stages of a hoshin are complete",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					docs, err := a.repo.List(ctx)
					if err != nil {
						return fmt.Errorf("list documents: %w", err)
					}
					printAllStatuses(cmd.OutOrStdout(), status.ListStatuses(docs))
					return nil
				}
				doc, err := a.resolve(ctx, args[0])
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status.GetDocumentStatus(doc))
				return nil
			})
		},
	}
}

func newRankCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rank [id|name]",
		Short: "Rank the five statements by how many others they drive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				doc, err := a.resolve(ctx, refArg(args))
				if err != nil {
					return err
				}
				r, err := hoshin.CalculateRanking(doc)
				if err != nil {
					return err
				}
				printRanking(cmd.OutOrStdout(), r)
				return nil
			})
		},
	}
}

func newExportCmd(flags *cliFlags) *cobra.Command {
	var (
		dir    string
		stdout bool
	)
	cmd := &cobra.Command{
		Use:   "export [id|name]",
		Short: "Write a vBRIEF plan for a ranked hoshin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				doc, err := a.resolve(ctx, refArg(args))
				if err != nil {
					return err
				}
				if stdout {
					v, err := export.ToVBrief(doc)
					if err != nil {
						return err
					}
					data, err := export.Marshal(v)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if dir == "" {
					dir = a.cfg.Export.Dir
				}
				path, err := export.WriteFile(dir, doc)
				if err != nil {
					if errors.Is(err, export.ErrExport) {
						return err
					}
					return fmt.Errorf("export failed: %w", err)
				}
				a.log.Info("exported", zap.String("id", doc.ID), zap.String("path", path))
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default: export.dir from hoshin.yml)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the JSON instead of writing a file")
	return cmd
}

func newDiagramCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diagram [id|name]",
		Short: "Print a Mermaid flowchart of the directions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				doc, err := a.resolve(ctx, refArg(args))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), export.GenerateMermaid(doc))
				return nil
			})
		},
	}
}

func newDeleteCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a hoshin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				doc, err := a.resolve(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.repo.Delete(ctx, doc.ID); err != nil {
					return fmt.Errorf("delete %s: %w", doc.ID, err)
				}
				a.log.Info("deleted document", zap.String("id", doc.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", doc.Name)
				return nil
			})
		},
	}
}

// --- Output ---

func printList(w io.Writer, statuses []status.DocumentStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No hoshins found.")
		fmt.Fprintln(w, "Run 'hoshin new' to start one.")
		return
	}
	for _, st := range statuses {
		state := "draft"
		if st.Calculable {
			state = "ranked"
		}
		fmt.Fprintf(w, "%s  %-24s %2d/10 directions  [%s]\n", st.ID, st.Name, st.DirectionsSet, state)
	}
}

func printDocument(w io.Writer, doc hoshin.Document) {
	fmt.Fprintf(w, "Hoshin: %s (%s)\n", doc.Name, doc.ID)
	fmt.Fprintf(w, "Prompt: %s\n\n", doc.PromptQuestion)
	for _, id := range hoshin.StatementIDs {
		s, ok := doc.Statement(id)
		if !ok {
			fmt.Fprintf(w, "  %s  (missing)\n", id)
			continue
		}
		order := "-"
		if s.InitialOrder != nil {
			order = fmt.Sprint(*s.InitialOrder)
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", id, order, s.Text)
	}
	fmt.Fprintln(w)
	for _, p := range hoshin.FixedPairs {
		if d := doc.DirectionFor(p[0], p[1]); d != nil {
			fmt.Fprintf(w, "  %s  %s -> %s\n", p.ID(), d.From, d.To)
		} else {
			fmt.Fprintf(w, "  %s  unset\n", p.ID())
		}
	}
}

func printAllStatuses(w io.Writer, statuses []status.DocumentStatus) {
	if len(statuses) == 0 {
		printList(w, nil)
		return
	}
	for i, st := range statuses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printStatus(w, st)
	}
}

func printStatus(w io.Writer, st status.DocumentStatus) {
	fmt.Fprintf(w, "Hoshin: %s\n", st.Name)
	for _, si := range st.Stages {
		marker := "  "
		label := "pending"
		if si.Complete {
			label = "complete"
		}
		if si.Stage == st.NextStage {
			marker = "->"
			label = "next"
		}
		fmt.Fprintf(w, "  %s Stage %d: %-12s [%s]\n", marker, si.Stage+1, si.Name, label)
	}
	if st.NextStage == -1 {
		fmt.Fprintf(w, "  All stages complete. Focus on %s.\n", joinIDs(st.FocusTopTwo))
		return
	}
	if st.FirstIssue != nil {
		fmt.Fprintf(w, "  Next: %s\n", st.FirstIssue.Message)
	}
}

func printRanking(w io.Writer, r *hoshin.RankingResult) {
	for _, row := range r.Ranking {
		marker := "  "
		if row.Rank <= 2 {
			marker = "* "
		}
		fmt.Fprintf(w, "%s%d. %s (%d out)  %s\n", marker, row.Rank, row.StatementID, row.ArrowsOut, row.StatementText)
	}
	fmt.Fprintf(w, "Focus: %s\n", joinIDs(r.FocusTopTwo[:]))
}

func joinIDs(ids []hoshin.StatementID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
