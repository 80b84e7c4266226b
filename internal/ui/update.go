package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"boqview/internal/export"
	"boqview/internal/model"
	"boqview/internal/util/logx"
)

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	return []helpItem{
		{group: "Navigation", text: "Previous row", key: tea.Key{Type: tea.KeyUp}},
		{group: "Navigation", text: "Next row", key: tea.Key{Type: tea.KeyDown}},
		{group: "Navigation", text: "Previous page", key: km.PrevPage},
		{group: "Navigation", text: "Next page", key: km.NextPage},
		{group: "Navigation", text: "First page", key: km.FirstPage},
		{group: "Navigation", text: "Last page", key: km.LastPage},
		{group: "Navigation", text: "Go to page", key: km.GoToPage},

		{group: "Search", text: "Search description", key: km.Search},
		{group: "Search", text: "Where expression", key: km.Where},
		{group: "Search", text: "Toggle match mode (ALL/ANY)", key: km.Mode},

		{group: "Filter", text: "Filter WBS-1", key: km.FacetWBS1},
		{group: "Filter", text: "Filter WBS-2", key: km.FacetWBS2},
		{group: "Filter", text: "Filter WBS-3", key: km.FacetWBS3},
		{group: "Filter", text: "Filter WBS-4", key: km.FacetWBS4},
		{group: "Filter", text: "Filter unit", key: km.FacetUnit},
		{group: "Filter", text: "Clear filters", key: km.ClearFilter},

		{group: "Edit", text: "Mark/unmark row for removal", key: km.Mark},
		{group: "Edit", text: "Apply removals in view", key: km.Apply},
		{group: "Edit", text: "Undo pending marks", key: km.Undo},

		{group: "Views", text: "Row detail", key: km.Detail},
		{group: "Views", text: "Amount by dimension", key: km.Stats},
		{group: "Views", text: "Application logs", key: km.AppLogs},
		{group: "Views", text: "Copy row as CSV", key: km.CopyRow},

		{group: "Export", text: "Export CSV", key: km.ExportCSV},
		{group: "Export", text: "Export PDF", key: km.ExportPDF},
		{group: "Export", text: "Export XLSX", key: km.ExportXLSX},
		{group: "Export", text: "Export NDJSON", key: km.ExportJSON},
		{group: "Export", text: "Export all formats", key: km.ExportAll},

		{group: "AI", text: "Summarize view (OpenAI)", key: km.Summarize},

		{group: "Control", text: "Help", key: km.Help},
		{group: "Control", text: "Quit", key: km.Quit},
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		// reserve 1 for the table header, 1 for the query line, 1 for status
		h := msg.Height - 3
		if h < 1 {
			h = 1
		}
		m.tbl.SetHeight(h)
		m.tbl.SetWidth(msg.Width)
		m.applyColumns()
		m.refreshTable()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.modalActive {
			return m.updateModal(msg)
		}
		if m.inlineMode != inlineNone {
			return m.updateInline(msg)
		}
		if next, cmd, ok := m.updateShortcuts(msg); ok {
			return next, cmd
		}
	case tickMsg:
		if m.drainFollow() {
			m.refreshTable()
			if m.modalActive && m.modalKind == modalStats {
				m.renderStats()
			}
		}
		if m.rows == nil && m.errs == nil {
			return m, nil
		}
		return m, tick()
	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			m.lastMsg = fmt.Sprintf("export failed: %v", msg.err)
			logx.Errorf("export: %s to %s failed: %v", msg.format, msg.path, msg.err)
		} else {
			m.lastMsg = fmt.Sprintf("exported %d rows to %s", msg.rows, msg.path)
			logx.Infof("export: wrote %d rows to %s (%s)", msg.rows, msg.path, msg.format)
		}
		return m, nil
	case summaryDoneMsg:
		m.netBusy = false
		if msg.err != nil {
			m.lastMsg = fmt.Sprintf("AI summary failed: %v", msg.err)
			logx.Warnf("openai: summary failed: %v", msg.err)
			return m, nil
		}
		m.lastMsg = ""
		m.openModal(modalSummary, "AI Summary", msg.text)
		return m, nil
	case spinner.TickMsg:
		if !m.exporting && !m.netBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modalKind {
	case modalHelp:
		switch {
		case msg.Type == tea.KeyUp:
			if m.helpSel > 0 {
				m.helpSel--
			}
		case msg.Type == tea.KeyDown:
			if m.helpSel+1 < len(m.helpItems) {
				m.helpSel++
			}
		case msg.Type == tea.KeyEnter:
			m.modalActive = false
			if len(m.helpItems) > 0 {
				return m, keyCmd(m.helpItems[m.helpSel].key)
			}
		case msg.Type == tea.KeyEsc || keyMatches(msg, m.keymap.Quit) || keyMatches(msg, m.keymap.Help):
			m.modalActive = false
		}
		return m, nil
	case modalFacet:
		return m.updateFacetModal(msg)
	case modalStats:
		switch msg.Type {
		case tea.KeyLeft:
			m.statsDim = model.Dimensions[(int(m.statsDim)+len(model.Dimensions)-1)%len(model.Dimensions)]
			m.renderStats()
			return m, nil
		case tea.KeyRight:
			m.statsDim = model.Dimensions[(int(m.statsDim)+1)%len(model.Dimensions)]
			m.renderStats()
			return m, nil
		}
	case modalDetail:
		if keyMatches(msg, m.keymap.Mark) {
			if r, ok := m.currentRow(); ok {
				m.session.TogglePending(r.ID)
				m.refreshTable()
				m.openDetailModal()
			}
			return m, nil
		}
		if keyMatches(msg, m.keymap.CopyRow) {
			if r, ok := m.currentRow(); ok {
				copyToClipboard(rowCSV(r))
				m.lastMsg = "copied to clipboard"
			}
			return m, nil
		}
	}
	switch {
	case msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || keyMatches(msg, m.keymap.Quit):
		m.modalActive = false
		return m, nil
	case keyMatches(msg, m.keymap.CopyRow):
		copyToClipboard(m.modalBody)
		m.lastMsg = "copied to clipboard"
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) updateFacetModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyUp || msg.String() == "k":
		if m.facetSel > 0 {
			m.facetSel--
		}
	case msg.Type == tea.KeyDown || msg.String() == "j":
		if m.facetSel+1 < len(m.facetItems) {
			m.facetSel++
		}
	case msg.Type == tea.KeySpace || msg.String() == " ":
		if m.facetSel < len(m.facetItems) {
			m.facetItems[m.facetSel].selected = !m.facetItems[m.facetSel].selected
		}
	case msg.String() == "c":
		for i := range m.facetItems {
			m.facetItems[i].selected = false
		}
	case msg.Type == tea.KeyEnter:
		var values []string
		for _, it := range m.facetItems {
			if it.selected {
				values = append(values, it.value)
			}
		}
		m.session.SetFacet(m.facetDim, values)
		m.modalActive = false
		m.tbl.SetCursor(0)
		m.refreshTable()
		m.lastMsg = fmt.Sprintf("%d rows", len(m.session.View().Filtered))
		return m, nil
	case msg.Type == tea.KeyEsc || keyMatches(msg, m.keymap.Quit):
		m.modalActive = false
		return m, nil
	}
	m.modalBody = renderFacetList(m.facetItems, m.facetSel)
	m.modalVP.SetContent(m.modalBody)
	m.keepVisible(m.facetSel)
	return m, nil
}

func (m *Model) openInline(mode inlineMode, prompt, value string) tea.Cmd {
	m.inlineMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInline() {
	m.inlineMode = inlineNone
	m.input.Blur()
}

func (m *Model) updateInline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.inlineMode
		m.closeInline()
		switch mode {
		case inlineSearch:
			m.session.SetDraft(value)
			m.submit()
		case inlineWhere:
			m.session.SetWhere(value)
			m.submit()
		case inlinePage:
			n, err := strconv.Atoi(value)
			if err != nil {
				m.lastMsg = "invalid page number"
				return m, nil
			}
			if m.session.GoToPage(n) {
				m.tbl.SetCursor(0)
				m.refreshTable()
			}
		}
		return m, nil
	case tea.KeyEsc:
		// drop the edit; the draft goes back to the committed query
		st := m.session.State()
		switch m.inlineMode {
		case inlineSearch:
			m.session.SetDraft(st.Query.Text)
		case inlineWhere:
			m.session.SetWhere(st.Query.Where)
		}
		m.closeInline()
		return m, nil
	case tea.KeyTab:
		if m.inlineMode == inlineSearch {
			m.session.ToggleMode()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inlineMode == inlineSearch {
		m.session.SetDraft(m.input.Value())
	}
	return m, cmd
}

// submit commits the draft and reports the outcome in the status line.
func (m *Model) submit() {
	err := m.session.Submit()
	m.tbl.SetCursor(0)
	m.refreshTable()
	if err != nil {
		m.lastMsg = m.styles.Error.Render(m.session.Message())
		return
	}
	v := m.session.View()
	if m.session.State().Query.Empty() {
		m.lastMsg = fmt.Sprintf("showing first %d rows", len(v.Working))
		return
	}
	m.lastMsg = fmt.Sprintf("%d rows match", len(v.Working))
}

func (m *Model) updateShortcuts(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	km := m.keymap
	if i, ok := km.facetKey(msg); ok {
		m.openFacetModal(model.Dimensions[i])
		return m, nil, true
	}
	switch {
	case keyMatches(msg, km.Search):
		return m, m.openInline(inlineSearch, "/", m.session.State().Draft.Text), true
	case keyMatches(msg, km.Where):
		return m, m.openInline(inlineWhere, "", m.session.State().Draft.Where), true
	case keyMatches(msg, km.GoToPage):
		return m, m.openInline(inlinePage, "", ""), true
	case keyMatches(msg, km.Mode):
		mode := m.session.ToggleMode()
		m.lastMsg = fmt.Sprintf("match mode %s (applies on next search)", mode)
		return m, nil, true
	case keyMatches(msg, km.ClearFilter):
		m.session.ClearFilters()
		m.tbl.SetCursor(0)
		m.refreshTable()
		m.lastMsg = "filters cleared"
		return m, nil, true
	case keyMatches(msg, km.Mark) || keyMatches(msg, km.MarkAlt):
		if r, ok := m.currentRow(); ok {
			m.session.TogglePending(r.ID)
			m.refreshTable()
			m.tbl.MoveDown(1)
		}
		return m, nil, true
	case keyMatches(msg, km.Apply):
		if n := m.session.Apply(); n > 0 {
			m.lastMsg = fmt.Sprintf("removed %d rows", n)
		} else {
			m.lastMsg = "nothing marked in this view"
		}
		m.refreshTable()
		return m, nil, true
	case keyMatches(msg, km.Undo):
		m.session.Undo()
		m.refreshTable()
		m.lastMsg = "pending marks cleared"
		return m, nil, true
	case keyMatches(msg, km.PrevPage):
		return m, m.paged(m.session.PrevPage()), true
	case keyMatches(msg, km.NextPage):
		return m, m.paged(m.session.NextPage()), true
	case keyMatches(msg, km.FirstPage):
		return m, m.paged(m.session.FirstPage()), true
	case keyMatches(msg, km.LastPage):
		return m, m.paged(m.session.LastPage()), true
	case keyMatches(msg, km.Detail):
		m.openDetailModal()
		return m, nil, true
	case keyMatches(msg, km.Stats):
		m.openStatsModal()
		return m, nil, true
	case keyMatches(msg, km.ExportCSV):
		return m, m.exportCmd(export.FormatCSV), true
	case keyMatches(msg, km.ExportPDF):
		return m, m.exportCmd(export.FormatPDF), true
	case keyMatches(msg, km.ExportXLSX):
		return m, m.exportCmd(export.FormatXLSX), true
	case keyMatches(msg, km.ExportJSON):
		return m, m.exportCmd(export.FormatNDJSON), true
	case keyMatches(msg, km.ExportAll):
		return m, m.exportAllCmd(), true
	case keyMatches(msg, km.Summarize):
		return m, m.summaryCmd(), true
	case keyMatches(msg, km.CopyRow):
		if r, ok := m.currentRow(); ok {
			copyToClipboard(rowCSV(r))
			m.lastMsg = "copied to clipboard"
		}
		return m, nil, true
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
		return m, nil, true
	case keyMatches(msg, km.Help):
		m.openHelpModal()
		return m, nil, true
	case keyMatches(msg, km.Quit):
		return m, tea.Quit, true
	}
	return m, nil, false
}

func (m *Model) paged(moved bool) tea.Cmd {
	if moved {
		m.tbl.SetCursor(0)
		m.refreshTable()
	}
	return nil
}
