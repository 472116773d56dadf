package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/ticket"
)

// KeyMap defines the bindings for the ticket list and the detail view.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Quit     key.Binding

	// List.
	Open     key.Binding
	ViewMode key.Binding
	Search   key.Binding
	Refresh  key.Binding

	// Detail.
	Back       key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Resolve    key.Binding
	Comment    key.Binding
	Pin        key.Binding
	Visibility key.Binding
	Status     key.Binding
	Priority   key.Binding
	Assign     key.Binding
	Contact    key.Binding
	Asset      key.Binding
	Article    key.Binding
	Milestone  key.Binding
	Invoice    key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	PageUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "half page up")),
	PageDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "half page down")),
	Home:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Open:     key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
	ViewMode: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "list/board")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

	Back:       key.NewBinding(key.WithKeys("esc", "h"), key.WithHelp("esc", "back")),
	NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev tab")),
	Resolve:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "resolve")),
	Comment:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
	Pin:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin as resolution")),
	Visibility: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "internal/public")),
	Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
	Priority:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "priority")),
	Assign:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assign")),
	Contact:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "add contact")),
	Asset:      key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add asset")),
	Article:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "link article")),
	Milestone:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "milestone")),
	Invoice:    key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "invoice")),
}

// ForTicket returns the bindings that apply to t. Resolve and pin are
// disabled once the ticket is resolved.
func (k KeyMap) ForTicket(t model.Ticket) KeyMap {
	can := ticket.CanResolve(t)
	k.Resolve.SetEnabled(can)
	k.Pin.SetEnabled(can)
	return k
}

// helpLine formats enabled bindings as "key desc" pairs.
func helpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
