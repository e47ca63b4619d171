package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/catalogs/internal/catalog"
)

var (
	searchStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	activeTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	inactiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

type catalogItem struct {
	item catalog.Item
}

func (c catalogItem) Title() string {
	if c.item.HasIdentity() {
		return fmt.Sprintf("#%d %s", c.item.ID, c.item.Title)
	}
	return c.item.Title
}

// Description shows the first two attributes.
func (c catalogItem) Description() string {
	schema := catalog.SchemaFor(c.item.Kind)
	var parts []string
	for i, a := range c.item.Attrs {
		if i == 2 {
			break
		}
		parts = append(parts, schema.LabelFor(a.Key)+": "+a.Value)
	}
	return strings.Join(parts, "  ")
}

func (c catalogItem) FilterValue() string {
	return c.item.Title
}

func toListItems(items []catalog.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, catalogItem{item: it})
	}
	return out
}

func (m model) View() string {
	if m.showHelp {
		return helpView(m.kind)
	}

	var b strings.Builder

	tabs := make([]string, 0, len(catalog.Kinds))
	for i, kind := range catalog.Kinds {
		label := fmt.Sprintf("[%d] %s", i+1, catalog.SchemaFor(kind).Label)
		if kind == m.kind {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}

	header := []string{searchStyle.Render(m.searchInput.View())}
	if m.kind == catalog.Event {
		header = append(header, " ", searchStyle.Render("km "+m.radiusInput.View()))
	}
	header = append(header, "  ", strings.Join(tabs, " "))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, header...))
	b.WriteString("\n\n")

	if m.detail != nil {
		b.WriteString(detailView(*m.detail, m.width))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if p, ok := m.pipe().PendingUndo(); ok && m.confirm == nil {
		b.WriteString(promptStyle.Render(fmt.Sprintf("You deleted %q.  [u]ndo", p.Item.Title)))
	} else if m.confirm != nil {
		b.WriteString(promptStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}

	help := "[/]search [enter]details [w]save [s]saved [d]elete [u]ndo [o]pen [1-3]catalog [?]help [q]uit"
	if m.kind == catalog.Event {
		help = "[r]adius " + help
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func detailView(item catalog.Item, width int) string {
	schema := catalog.SchemaFor(item.Kind)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(schema.TitleLabel+":"), item.Title)
	for _, a := range item.Attrs {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(schema.LabelFor(a.Key)+":"), a.Value)
	}
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Image:"), item.ImageURL)
	if item.LinkURL != "" {
		fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Link:"), item.LinkURL)
	}

	style := detailStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(b.String())
}

func helpView(kind catalog.Kind) string {
	var usage string
	switch kind {
	case catalog.Photo:
		usage = "Search Pexels for stock photos. Saving also downloads the original image."
	case catalog.Event:
		usage = "Search Ticketmaster events by city. Press r to set a search radius."
	default:
		usage = "Search OMDb by exact movie title. Saving also downloads the poster."
	}

	lines := []string{
		labelStyle.Render(catalog.SchemaFor(kind).Label),
		"",
		usage,
		"",
		"/        edit the query, enter to search",
		"enter    show details of the selected item",
		"w        save the selected item",
		"s        show saved items",
		"d        delete a saved item",
		"u        undo the last delete while the prompt is shown",
		"o        open the item in the browser",
		"1 2 3    switch catalog",
		"q        back / quit",
		"",
		statusStyle.Render("press any key to close"),
	}
	return detailStyle.Render(strings.Join(lines, "\n"))
}
