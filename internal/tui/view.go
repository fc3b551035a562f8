package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"photo-triage/internal/preview"
	"photo-triage/pkg/utils"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	previewFrame = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

func (m model) View() string {
	var body string
	switch m.st {
	case statusPermission:
		body = m.permissionView()
	case statusScanning:
		body = fmt.Sprintf("Indexing photo library... %s  Indexed: %d\n%s",
			m.sp.View(), m.indexed, hintStyle.Render("Press q to quit"))
	case statusFilter:
		body = m.filterView()
	case statusLoading:
		body = fmt.Sprintf("Loading photos... %s\n", m.sp.View())
	case statusTriage:
		body = m.triageView()
	case statusTrash:
		body = m.trashView()
	case statusConfirm:
		body = m.confirmView()
	case statusDeleting:
		body = fmt.Sprintf("Deleting %d photo(s)... %s\n", m.deletedCount, m.sp.View())
	case statusDeleted:
		body = fmt.Sprintf("Deleted %d photo(s). The trash is now empty.\n%s",
			m.deletedCount, hintStyle.Render("Press any key to continue"))
	}
	if m.errBanner != "" {
		body = bannerStyle.Render("! "+m.errBanner) + "\n" +
			hintStyle.Render("Press any key to dismiss") + "\n\n" + body
	}
	return body
}

func (m model) permissionView() string {
	return "Photo library access is required to triage photos.\n" +
		fmt.Sprintf("This tool could not read %s.\n\n", m.cfg.Library.Root) +
		hintStyle.Render("Fix the directory permissions, then press r to retry. q quits.") + "\n"
}

func (m model) filterView() string {
	fields := []string{
		fmt.Sprintf("Year %d", m.filter.Year),
		"Month " + orAll(m.filter.Month),
		"Day " + orAll(m.filter.Day),
	}
	for i := range fields {
		if i == m.filterField {
			fields[i] = focusStyle.Render("[" + fields[i] + "]")
		} else {
			fields[i] = "[" + fields[i] + "]"
		}
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("photo-triage") + "  " +
		subtleStyle.Render(fmt.Sprintf("%d photos indexed", m.indexed)) + "\n\n")
	b.WriteString("Pick a date range to triage:\n\n  ")
	b.WriteString(strings.Join(fields, "  "))
	b.WriteString("\n\n")
	if n := m.cfg.Trash.Len(); n > 0 {
		b.WriteString(fmt.Sprintf("Trash: %d photo(s), %s pending deletion\n\n",
			n, utils.HumanizeBytes(m.cfg.Trash.TotalSize())))
	}
	b.WriteString(hintStyle.Render("tab/←→ field · ↑↓ change · enter load · t trash · q quit"))
	b.WriteString("\n")
	return b.String()
}

func orAll(v *int) string {
	if v == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *v)
}

func (m model) triageView() string {
	header := m.triageHeader()
	footer := hintStyle.Render("drag or ←/→ · left discards, right keeps · t trash · esc filter · q quit")

	if m.cfg.Session.Len() == 0 {
		return header + "\nNo photos in this date range. Press esc to pick another.\n\n" + footer
	}
	if m.cfg.Session.Done() {
		return header + fmt.Sprintf("\nAll done! %d photo(s) triaged.\n\n", m.cfg.Session.Len()) + footer
	}
	if m.card == nil {
		return header + "\n" + footer
	}

	areaH := m.termH - 4
	if areaH < 8 {
		areaH = 8
	}
	return header + "\n" + m.card.render(&m, m.termW, areaH) + "\n" + footer
}

func (m model) triageHeader() string {
	s := headerStyle.Render(fmt.Sprintf("Photo %d/%d", m.cfg.Session.Cursor()+1, m.cfg.Session.Len()))
	if m.cfg.Session.Done() {
		s = headerStyle.Render(fmt.Sprintf("Photo %d/%d", m.cfg.Session.Len(), m.cfg.Session.Len()))
	}
	if a, ok := m.cfg.Session.Current(); ok {
		s += subtleStyle.Render("  " + a.Filename + "  " + a.CreationTime.Format("2006-01-02 15:04"))
	}
	s += subtleStyle.Render(fmt.Sprintf("  |  trash: %d", m.cfg.Trash.Len()))
	return s
}

func (m model) trashView() string {
	assets := m.cfg.Trash.Assets()
	header := headerStyle.Render(fmt.Sprintf("Trash (%d)", len(assets))) +
		subtleStyle.Render("  "+utils.HumanizeBytes(m.cfg.Trash.TotalSize())+" reclaimable")
	footer := hintStyle.Render("↑↓ move · c clear · d delete permanently · esc close")

	if len(assets) == 0 {
		return header + "\n\nThe trash is empty.\n\n" + footer
	}

	visible := m.trashVisibleHeight()
	start := m.trashScroll
	end := start + visible
	if end > len(assets) {
		end = len(assets)
	}
	var list strings.Builder
	for i := start; i < end; i++ {
		a := assets[i]
		prefix := "  "
		if i == m.trashCursor {
			prefix = cursorStyle.Render(">") + " "
		}
		line := fmt.Sprintf("%s%-30s %8s  %s", prefix,
			clip(a.Filename, 30), utils.HumanizeBytesCompact(a.Size),
			a.CreationTime.Format("2006-01-02"))
		list.WriteString(line + "\n")
	}

	side := m.trashPreview(visible)
	body := lipgloss.JoinHorizontal(lipgloss.Top, list.String(), side)
	return header + "\n\n" + body + "\n" + footer
}

func (m model) trashPreview(rows int) string {
	w := m.termW - 50
	if w < 16 {
		return ""
	}
	if w > 40 {
		w = 40
	}
	if rows < 4 {
		rows = 4
	}
	if m.trashURI == "" {
		return previewFrame.Render(preview.Placeholder(w-4, rows-2))
	}
	s, err := m.cfg.Preview.Render(m.trashURI, w-4, rows-2)
	if err != nil {
		return previewFrame.Render(subtleStyle.Render("no preview"))
	}
	return previewFrame.Render(s)
}

func (m model) trashVisibleHeight() int {
	h := m.termH - 6
	if h < 4 {
		h = 4
	}
	return h
}

func (m *model) adjustTrashScroll() {
	visible := m.trashVisibleHeight()
	if m.trashCursor >= m.trashScroll+visible {
		m.trashScroll = m.trashCursor - visible + 1
	}
	if m.trashCursor < m.trashScroll {
		m.trashScroll = m.trashCursor
	}
}

func (m model) confirmView() string {
	return dangerStyle.Render(m.confirmPrompt) + "\n\n" +
		"Press " + dangerStyle.Render("y") + " to delete, n/esc to cancel.\n"
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
