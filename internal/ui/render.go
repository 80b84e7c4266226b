package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"boqview/internal/engine"
	"boqview/internal/export"
	"boqview/internal/model"
	"boqview/internal/util/logx"
)

func (m *Model) View() string {
	v := m.renderMain()
	if m.modalActive {
		// Dim the background content while keeping it visible
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderMain() string {
	tv := m.tbl.View()
	view := m.session.View()
	st := m.session.State()

	var bottom string
	switch m.inlineMode {
	case inlineSearch:
		bottom = fmt.Sprintf("search [%s]: %s    [enter]=search [esc]=cancel [tab]=mode", st.Draft.Mode, m.input.View())
	case inlineWhere:
		bottom = fmt.Sprintf("where: %s    [enter]=apply [esc]=cancel", m.input.View())
	case inlinePage:
		bottom = fmt.Sprintf("go to page (1-%d): %s    [enter]=go [esc]=cancel", view.PageCount, m.input.View())
	default:
		bottom = m.renderQueryLine(st)
	}
	// keep layout stable
	if bottom == "" && m.termWidth > 0 {
		bottom = strings.Repeat(" ", m.termWidth)
	}

	busy := ""
	if m.exporting || m.netBusy {
		busy = m.spin.View() + " "
	}
	follow := ""
	if m.source.Follow {
		follow = fmt.Sprintf(" follow:+%d", m.appended)
	}
	status := fmt.Sprintf("%s | rows:%d/%d page:%d/%d | pending:%d (in view %d) removed:%d | amount:%s qty:%s |%s [?]=help | %s%s",
		m.source.Label,
		len(view.Filtered), len(view.Working),
		view.PageNum, view.PageCount,
		len(st.Pending), view.PendingInView, st.Committed,
		export.FormatNumber(view.Totals.Amount), qtyLine(view.Totals),
		follow, busy, m.lastMsg)
	return lipgloss.JoinVertical(lipgloss.Left, tv, bottom, m.styles.Status.Render(status))
}

// renderQueryLine summarizes the committed query and the active facets.
func (m *Model) renderQueryLine(st engine.State) string {
	var parts []string
	mode := "[" + st.Draft.Mode.String() + "]"
	if st.Draft.Mode != st.Query.Mode && !st.Query.Empty() {
		// toggled but not yet searched
		mode += "*"
	}
	parts = append(parts, m.styles.Mode.Render(mode))
	if t := strings.TrimSpace(st.Query.Text); t != "" {
		parts = append(parts, fmt.Sprintf("search: %q", t))
	}
	if w := strings.TrimSpace(st.Query.Where); w != "" {
		parts = append(parts, "where: "+w)
	}
	if st.Query.Empty() {
		parts = append(parts, fmt.Sprintf("top %d by source order", m.session.Options().DefaultLimit))
	}
	if f := facetSummary(st.Filters); f != "" {
		parts = append(parts, m.styles.Facet.Render(f)+"  [F]=clear")
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderHelp() string {
	if len(m.helpItems) == 0 {
		m.helpItems = m.buildHelpItems()
	}
	if m.helpSel < 0 {
		m.helpSel = 0
	}
	if m.helpSel >= len(m.helpItems) {
		m.helpSel = len(m.helpItems) - 1
	}
	lines := []string{"Shortcuts:"}
	currentGroup := ""
	lineIndexOfSel := 0
	for i, it := range m.helpItems {
		if it.group != currentGroup {
			currentGroup = it.group
			lines = append(lines, "")
			lines = append(lines, currentGroup+":")
		}
		prefix := "  "
		if i == m.helpSel {
			prefix = "> "
			lineIndexOfSel = len(lines)
		}
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, keyLabel(it.key), it.text))
	}
	m.keepVisible(lineIndexOfSel)
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

// keepVisible scrolls the modal viewport so line stays on screen.
func (m *Model) keepVisible(line int) {
	if m.modalVP.Height <= 0 {
		return
	}
	top := m.modalVP.YOffset
	bottom := top + m.modalVP.Height - 1
	if line <= top {
		m.modalVP.YOffset = max(0, line-1)
	} else if line >= bottom {
		m.modalVP.YOffset = max(0, line-m.modalVP.Height+2)
	}
}

func (m *Model) openModal(kind modalKind, title, body string) {
	m.modalActive = true
	m.modalKind = kind
	m.modalTitle = title
	m.modalBody = body
	m.resizeModal()
}

func (m *Model) openHelpModal() {
	m.helpItems = m.buildHelpItems()
	m.helpSel = 0
	m.openModal(modalHelp, "Help", m.renderHelp())
}

func (m *Model) openDetailModal() {
	r, ok := m.currentRow()
	if !ok {
		return
	}
	title := "Row"
	if m.session.IsPending(r.ID) {
		title = "Row (marked for removal)"
	}
	m.openModal(modalDetail, title, renderDetail(r, m.session.Keywords(), m.styles))
}

func (m *Model) openFacetModal(dim model.Dimension) {
	selected := map[string]bool{}
	for _, v := range m.session.State().Filters[dim] {
		selected[v] = true
	}
	opts := m.session.View().Options[dim]
	m.facetDim = dim
	m.facetItems = make([]facetItem, len(opts))
	for i, v := range opts {
		m.facetItems[i] = facetItem{value: v, selected: selected[v]}
	}
	m.facetSel = 0
	m.openModal(modalFacet, "Filter "+dim.String(), renderFacetList(m.facetItems, m.facetSel))
}

func (m *Model) openStatsModal() {
	m.modalKind = modalStats
	m.modalActive = true
	m.resizeModal()
}

func (m *Model) renderStats() {
	v := m.session.View()
	m.modalTitle = "Stats: " + m.statsDim.String()
	width := m.modalVP.Width
	if width <= 0 {
		width = max(40, m.termWidth-10)
	}
	m.modalBody = renderBuckets(m.statsDim, engine.AmountBy(v.Filtered, m.statsDim), v.Totals, width)
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) openAppLogsModal() {
	m.openModal(modalLogs, "Application Logs", logx.Dump())
	m.modalVP.GotoBottom()
}

func (m *Model) resizeModal() {
	w := m.termWidth - 6
	h := m.termHeight - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.modalVP = viewport.New(w-4, h-4)
	switch m.modalKind {
	case modalStats:
		m.renderStats()
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
	default:
		m.modalVP.SetContent(m.modalBody)
	}
}

func (m *Model) renderModal() string {
	content := ""
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalFacet:
		content = m.modalVP.View() + "\n[↑/↓]=move  [space]=toggle  [c]=clear  [enter]=apply  [esc]=cancel"
	case modalStats:
		content = m.modalVP.View() + "\n[←/→]=dimension  [esc/enter]=close  [c]=copy"
	case modalDetail:
		content = m.modalVP.View() + "\n[esc/enter]=close  [x]=mark  [c]=copy"
	case modalLogs:
		v := m.session.View()
		header := []string{
			"Status:",
			fmt.Sprintf("source: %s  rows: %d  appended: %d", m.source.Label, m.store.Len(), m.appended),
			fmt.Sprintf("working: %d  filtered: %d  pages: %d", len(v.Working), len(v.Filtered), v.PageCount),
		}
		content = m.styles.Help.Render(strings.Join(header, "\n")) + "\n" + m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	}
	boxW := m.termWidth - 6
	if boxW < 20 {
		boxW = 20
	}
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
