package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/editor"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/wizard"
)

func newWizardCmd(flags *cliFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "wizard [id|name]",
		Short: "Answer the ten pairwise questions one at a time",
		Long: `wizard shows each pair of statements and asks which one enables the
other. Every answer is saved before the next pair is shown. Press esc to go
back to the editor with the answers so far.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				if mode == "" {
					mode = a.cfg.Wizard.Mode
				}
				m, err := wizard.ParseMode(mode)
				if err != nil {
					return err
				}
				doc, err := a.resolve(ctx, refArg(args))
				if err != nil {
					return err
				}
				s, err := editor.Load(ctx, a.repo, a.log)
				if err != nil {
					return err
				}
				if err := s.Select(ctx, doc.ID); err != nil {
					return err
				}

				seq, err := wizard.New(s.Current(), a.repo, m)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if seq.Done() {
					fmt.Fprintln(out, "Every pair already has a direction. Run with --mode all to revisit them.")
					return nil
				}

				p := tea.NewProgram(newWizardModel(ctx, seq),
					tea.WithContext(ctx),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(out),
				)
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("wizard: %w", err)
				}
				wm := final.(wizardModel)
				if err := s.Replace(ctx, wm.result); err != nil {
					return err
				}
				a.log.Info("wizard finished",
					zap.String("id", wm.result.ID),
					zap.Bool("complete", wm.completed),
					zap.Int("directions", hoshin.DirectionsSet(wm.result)),
				)
				if !wm.completed {
					fmt.Fprintf(out, "Saved %d/10 directions.\n", hoshin.DirectionsSet(wm.result))
					return nil
				}
				r, err := hoshin.CalculateRanking(wm.result)
				if err != nil {
					return err
				}
				printRanking(out, r)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "which pairs to ask: unset or all (default: wizard.mode from hoshin.yml)")
	return cmd
}

// --- TUI ---

// Which side of the pair the user has picked as the enabler.
const (
	choiceNone = -1
	choiceA    = 0 // Pair[0] -> Pair[1]
	choiceB    = 1 // Pair[1] -> Pair[0]
)

var (
	wizardTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	wizardCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	wizardPicked = wizardCard.
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Bold(true)
	wizardHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	wizardError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// wizardModel is the bubbletea model for one wizard run. It must only be
// used from the bubbletea event loop.
type wizardModel struct {
	ctx    context.Context
	seq    *wizard.Sequencer
	choice int
	err    error

	// Set when the program quits.
	completed bool
	result    hoshin.Document
}

func newWizardModel(ctx context.Context, seq *wizard.Sequencer) wizardModel {
	m := wizardModel{ctx: ctx, seq: seq, result: seq.Document()}
	m.resetChoice()
	return m
}

// resetChoice preselects the stored direction of the current step.
func (m *wizardModel) resetChoice() {
	m.choice = choiceNone
	step, ok := m.seq.Current()
	if !ok || step.Current == nil {
		return
	}
	if step.Current.From == step.Pair[0] {
		m.choice = choiceA
	} else {
		m.choice = choiceB
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	step, ok := m.seq.Current()
	if !ok {
		return m.finish(true)
	}

	switch key.String() {
	case "left", "h", "1":
		m.choice = choiceA
		m.err = nil
	case "right", "l", "2":
		m.choice = choiceB
		m.err = nil
	case "tab", "n":
		done, err := m.seq.Next()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m.advanced(done)
	case "enter", " ":
		if m.choice == choiceNone {
			m.err = wizard.ErrChoiceRequired
			return m, nil
		}
		from, to := step.Pair[0], step.Pair[1]
		if m.choice == choiceB {
			from, to = to, from
		}
		if !step.NeedsChoice && step.Current.From == from {
			done, err := m.seq.Next()
			if err != nil {
				m.err = err
				return m, nil
			}
			return m.advanced(done)
		}
		done, err := m.seq.Answer(m.ctx, from, to)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m.advanced(done)
	case "esc", "q", "ctrl+c":
		doc, err := m.seq.BackToEditor(m.ctx)
		m.result = doc
		if err != nil {
			m.err = err
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m wizardModel) advanced(done bool) (tea.Model, tea.Cmd) {
	m.err = nil
	if done {
		return m.finish(true)
	}
	m.resetChoice()
	return m, nil
}

func (m wizardModel) finish(completed bool) (tea.Model, tea.Cmd) {
	m.completed = completed
	m.result = m.seq.Document()
	return m, tea.Quit
}

func (m wizardModel) View() string {
	step, ok := m.seq.Current()
	if !ok {
		return wizardTitle.Render("All pairs answered.") + "\n"
	}

	title := wizardTitle.Render(fmt.Sprintf("Pair %d of %d  (%s)", step.Index+1, step.Total, step.Pair.ID()))
	question := "Which statement enables the other?"
	if !step.NeedsChoice {
		question += "  Already answered: press n to keep it."
	}

	cards := make([]string, 2)
	for i, id := range step.Pair {
		text := ""
		if s, ok := m.seq.Document().Statement(id); ok {
			text = s.Text
		}
		style := wizardCard
		if m.choice == i {
			style = wizardPicked
		}
		cards[i] = style.Render(fmt.Sprintf("%d. %s\n%s", i+1, id, text))
	}

	lines := []string{
		title,
		question,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[0], "  ", cards[1]),
	}
	if m.choice != choiceNone {
		from, to := step.Pair[0], step.Pair[1]
		if m.choice == choiceB {
			from, to = to, from
		}
		lines = append(lines, fmt.Sprintf("%s drives %s", from, to))
	}
	if m.err != nil {
		msg := m.err.Error()
		if errors.Is(m.err, wizard.ErrChoiceRequired) {
			msg = "Pick 1 or 2 first."
		}
		lines = append(lines, wizardError.Render(msg))
	}
	lines = append(lines, wizardHint.Render(strings.Join([]string{
		"1/2 pick", "enter confirm", "n keep", "esc back to editor",
	}, " · ")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
