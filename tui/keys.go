package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"tasktide/internal/infrastructure/config"
)

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	MoveRight     key.Binding
	MoveLeft      key.Binding
	Add           key.Binding
	Edit          key.Binding
	Complete      key.Binding
	Delete        key.Binding
	Confirm       key.Binding
	Cancel        key.Binding
	NextProject   key.Binding
	ToggleDetails key.Binding
	Quit          key.Binding
}

var keys keyMap

func init() {
	cfg, err := config.DefaultConfig()
	if err == nil {
		InitKeybindings(cfg)
	}
}

// InitKeybindings builds the key map from config
func InitKeybindings(cfg *config.Config) {
	kb := cfg.Keybindings
	keys = keyMap{
		Up:            binding(kb.Up, "up"),
		Down:          binding(kb.Down, "down"),
		Left:          binding(kb.Left, "prev column"),
		Right:         binding(kb.Right, "next column"),
		MoveRight:     binding(kb.MoveRight, "move right"),
		MoveLeft:      binding(kb.MoveLeft, "move left"),
		Add:           binding(kb.Add, "add"),
		Edit:          binding(kb.Edit, "edit"),
		Complete:      binding(kb.Complete, "complete"),
		Delete:        binding(kb.Delete, "delete"),
		Confirm:       binding(kb.Confirm, "confirm"),
		Cancel:        binding(kb.Cancel, "cancel"),
		NextProject:   binding(kb.NextProject, "next project"),
		ToggleDetails: binding(kb.ToggleDetails, "details"),
		Quit:          binding(kb.Quit, "quit"),
	}
}

func binding(keys []string, help string) key.Binding {
	labels := make([]string, len(keys))
	for i, k := range keys {
		if k == " " {
			k = "space"
		}
		labels[i] = k
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(labels, "/"), help))
}
