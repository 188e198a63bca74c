package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/hoshin/internal/editor"
	"github.com/dusk-indust/hoshin/internal/export"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/status"
)

func newShellCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Edit hoshins interactively with undo and redo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				s, err := editor.Load(ctx, a.repo, a.log)
				if err != nil {
					return err
				}
				sh := &shell{session: s, out: cmd.OutOrStdout(), exportDir: a.cfg.Export.Dir}
				return sh.run(ctx, cmd.InOrStdin())
			})
		},
	}
}

const shellHelp = `Commands:
  list                      list hoshins
  open <id>                 switch to another hoshin
  new [name]                create a hoshin and open it
  delete                    delete the open hoshin
  rename <name>             rename the open hoshin
  prompt <goal>             set the goal at the end of the prompt question
  text <slot> <text...>     set a statement, e.g. text s1 I must ship weekly
  order <slot> <n|->        set or clear a statement's initial order
  dir <from> <to>           set a pair's direction, e.g. dir s2 s1
  clear <pair>              clear a pair's direction, e.g. clear s1-s2
  input <picker|drag>       set the arrow input preference
  undo | redo               step through this session's edits
  show | status | rank      inspect the open hoshin
  diagram                   print a Mermaid flowchart
  export                    write the vBRIEF file
  help | quit`

// shell is a line-oriented editor over one Session.
type shell struct {
	session   *editor.Session
	out       io.Writer
	exportDir string
}

var errQuit = errors.New("quit")

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(sh.out, "Editing %s. Type 'help' for commands.\n", sh.session.Current().Name)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "hoshin> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := sh.exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	s := sh.session

	switch name {
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
	case "quit", "exit", "q":
		return errQuit
	case "list", "ls":
		printList(sh.out, status.ListStatuses(s.Documents()))
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <id>")
		}
		if err := s.Select(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Opened %s\n", s.Current().Name)
	case "new":
		doc, err := s.Create(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Created %s (%s)\n", doc.Name, doc.ID)
	case "delete":
		gone := s.Current().Name
		if err := s.Delete(ctx); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Deleted %s, now editing %s\n", gone, s.Current().Name)
	case "rename":
		return s.Rename(ctx, rest)
	case "prompt":
		return s.SetPromptBlank(ctx, rest)
	case "text":
		slot, text, _ := strings.Cut(rest, " ")
		id, err := parseSlot(slot)
		if err != nil {
			return err
		}
		return s.SetStatementText(ctx, id, strings.TrimSpace(text))
	case "order":
		if len(args) != 2 {
			return errors.New("usage: order <slot> <n|->")
		}
		id, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		var order *int
		if args[1] != "-" {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("order must be a number or '-': %w", err)
			}
			order = hoshin.IntPtr(n)
		}
		return s.SetInitialOrder(ctx, id, order)
	case "dir":
		if len(args) != 2 {
			return errors.New("usage: dir <from> <to>")
		}
		from, err := parseSlot(args[0])
		if err != nil {
			return err
		}
		to, err := parseSlot(args[1])
		if err != nil {
			return err
		}
		return s.SetDirection(ctx, from, to)
	case "clear":
		if len(args) != 1 {
			return errors.New("usage: clear <pair>")
		}
		return s.ClearDirection(ctx, hoshin.ConnectionPairID(strings.ToLower(args[0])))
	case "input":
		if len(args) != 1 {
			return errors.New("usage: input <picker|drag>")
		}
		return s.SetArrowInputMode(ctx, hoshin.ArrowInputMode(args[0]))
	case "undo":
		ok, err := s.Undo(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(sh.out, "Nothing to undo.")
		}
	case "redo":
		ok, err := s.Redo(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(sh.out, "Nothing to redo.")
		}
	case "show":
		printDocument(sh.out, s.Current())
	case "status":
		printStatus(sh.out, status.GetDocumentStatus(s.Current()))
	case "rank":
		r, err := hoshin.CalculateRanking(s.Current())
		if err != nil {
			return err
		}
		printRanking(sh.out, r)
	case "diagram":
		fmt.Fprint(sh.out, export.GenerateMermaid(s.Current()))
	case "export":
		path, err := export.WriteFile(sh.exportDir, s.Current())
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Wrote %s\n", path)
	default:
		return fmt.Errorf("unknown command %q (try 'help')", name)
	}
	return nil
}

func parseSlot(s string) (hoshin.StatementID, error) {
	id := hoshin.StatementID(strings.ToLower(strings.TrimSpace(s)))
	if !hoshin.IsStatementID(id) {
		return "", fmt.Errorf("unknown statement %q (want s1..s5)", s)
	}
	return id, nil
}
