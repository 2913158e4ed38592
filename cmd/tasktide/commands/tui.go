package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tasktide/tui"
	"tasktide/tui/style"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal user interface",
	Long: `Launch the interactive TUI for the board of the selected project.

The board follows the data service, so changes made from another terminal
or the web API show up as they happen.

Default keys (configurable under keybindings in the config file):
  ←/h →/l   - Focus column
  ↑/k ↓/j   - Focus task
  m/L M/H   - Move task right / left
  c/space   - Complete or reopen task (blocked tasks cannot be completed)
  a         - Add task to the focused column
  e         - Rename task
  d         - Delete task
  p/tab     - Next project
  ?         - Task details
  q/Ctrl+C  - Quit

Examples:
  tasktide tui
  tasktide tui --project "Web Site"
  tasktide`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(getContext())
		defer cancel()

		style.InitStyles(cfg)
		tui.InitKeybindings(cfg)

		c, err := followBoard(ctx)
		if err != nil {
			return err
		}

		m := tui.NewModel(c)
		defer m.Close()

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
