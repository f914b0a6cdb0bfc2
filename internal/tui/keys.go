package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of every screen. Letter keys are only live on
// screens without text input.
type KeyMap struct {
	Submit    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Cancel    key.Binding
	Biometric key.Binding
	Forgot    key.Binding
	Create    key.Binding

	Refresh        key.Binding
	Finance        key.Binding
	ChangePassword key.Binding
	Logout         key.Binding
	Back           key.Binding
	Quit           key.Binding

	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-tab", "previous field"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Biometric: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("C-b", "biometrics"),
	),
	Forgot: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("C-f", "forgot password"),
	),
	Create: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("C-n", "create account"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Finance: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finance"),
	),
	ChangePassword: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "password"),
	),
	Logout: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "logout"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " · "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
