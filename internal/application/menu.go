package application

import (
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

// MenuItem is one selectable line. Selecting it opens Submenu, or runs Action.
type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func(m *Model) tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

const backLabel = "Back"

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

// linkParents sets every submenu's Parent and points "Back" items at it.
func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == backLabel {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree() *Menu {
	compare := &Menu{
		Title: "Compare",
		Items: []MenuItem{
			{Label: "By instrument name", Action: func(m *Model) tea.Cmd {
				return m.startPrompt(compareByInstrument)
			}},
			{Label: "By row index", Action: func(m *Model) tea.Cmd {
				return m.startPrompt(compareByIndex)
			}},
			{Label: backLabel},
		},
	}

	root := &Menu{
		Title: "Main Menu",
		Items: []MenuItem{
			{Label: "Compare ->", Submenu: compare},
			{Label: "List instruments", Action: func(m *Model) tea.Cmd {
				m.showInstruments()
				return nil
			}},
			{Label: "Quit", Action: func(m *Model) tea.Cmd {
				m.quitting = true
				return tea.Quit
			}},
		},
	}

	linkParents(root, nil)

	return root
}
