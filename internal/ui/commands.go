package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"

	"boqview/internal/export"
	"boqview/internal/model"
	"boqview/internal/util/logx"
)

// followBatch caps how many streamed rows one tick folds into the session.
const followBatch = 500

func (m *Model) exportOptions() export.Options {
	return export.Options{MaxPDFRows: m.cfg.MaxPDFRows, FontPath: m.cfg.PDFFont}
}

// exportPath uses --out when its extension matches the format, else the default name.
func (m *Model) exportPath(f export.Format) string {
	if out := m.cfg.ExportOut; out != "" && strings.EqualFold(filepath.Ext(out), f.Ext()) {
		return out
	}
	return export.DefaultBase + f.Ext()
}

// filteredSnapshot copies the filtered view so a running export never sees later mutations.
func (m *Model) filteredSnapshot() []model.WorkingRow {
	v := m.session.View().Filtered
	out := make([]model.WorkingRow, len(v))
	copy(out, v)
	return out
}

func (m *Model) exportCmd(f export.Format) tea.Cmd {
	if m.exporting {
		m.lastMsg = "export already running"
		return nil
	}
	rows := m.filteredSnapshot()
	opt := m.exportOptions()
	if err := export.Check(f, rows, opt); err != nil {
		m.lastMsg = exportRefusal(f, err)
		logx.Warnf("export: %s refused: %v", f, err)
		return nil
	}
	path := m.exportPath(f)
	m.exporting = true
	m.lastMsg = fmt.Sprintf("exporting %d rows to %s…", len(rows), path)
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		err := export.ToFile(path, f, rows, opt)
		return exportDoneMsg{format: string(f), path: path, rows: len(rows), err: err}
	})
}

// exportAllCmd writes every format that accepts the current view side by side.
func (m *Model) exportAllCmd() tea.Cmd {
	if m.exporting {
		m.lastMsg = "export already running"
		return nil
	}
	rows := m.filteredSnapshot()
	opt := m.exportOptions()
	var formats []export.Format
	for _, f := range export.Formats {
		if err := export.Check(f, rows, opt); err != nil {
			logx.Infof("export: skipping %s: %v", f, err)
			continue
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		m.lastMsg = "nothing to export"
		return nil
	}
	dir := filepath.Dir(m.exportPath(export.FormatCSV))
	m.exporting = true
	m.lastMsg = fmt.Sprintf("exporting %d rows as %d formats…", len(rows), len(formats))
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		jobs, err := export.WriteAll(m.ctx, dir, export.DefaultBase, rows, opt, formats...)
		names := make([]string, 0, len(jobs))
		for _, j := range jobs {
			if j.Err == nil {
				names = append(names, string(j.Format))
			}
		}
		return exportDoneMsg{format: strings.Join(names, ","), path: filepath.Join(dir, export.DefaultBase+".*"), rows: len(rows), err: err}
	})
}

func exportRefusal(f export.Format, err error) string {
	switch {
	case eris.Is(err, export.ErrNoRows):
		return "nothing to export"
	case eris.Is(err, export.ErrTooLarge):
		return fmt.Sprintf("%s export refused: %v", strings.ToUpper(string(f)), err)
	}
	return fmt.Sprintf("%s export failed: %v", strings.ToUpper(string(f)), err)
}

func (m *Model) summaryCmd() tea.Cmd {
	if !m.summarizer.Enabled() {
		m.lastMsg = "AI summary unavailable (offline or OPENAI_API_KEY not set)"
		return nil
	}
	if m.netBusy {
		return nil
	}
	rows := m.filteredSnapshot()
	q := m.session.State().Query
	m.netBusy = true
	m.lastMsg = "summarizing current view…"
	logx.Infof("openai: summarizing %d rows", len(rows))
	client := m.summarizer
	ctx := m.ctx
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		text, err := client.Summarize(ctx, q, rows)
		return summaryDoneMsg{text: text, err: err}
	})
}

// drainFollow folds rows streamed since the last tick into the store and
// reloads the session from a fresh snapshot. It reports whether anything changed.
func (m *Model) drainFollow() bool {
	var batch []model.Row
stream:
	for len(batch) < followBatch && m.rows != nil {
		select {
		case r, ok := <-m.rows:
			if !ok {
				m.rows = nil
				logx.Infof("follow: stream closed")
				break stream
			}
			batch = append(batch, r)
		default:
			break stream
		}
	}
failures:
	for i := 0; i < 20 && m.errs != nil; i++ {
		select {
		case err, ok := <-m.errs:
			if !ok {
				m.errs = nil
				break failures
			}
			logx.Errorf("follow error: %v", err)
		default:
			break failures
		}
	}
	if len(batch) == 0 {
		return false
	}
	m.store.Append(batch...)
	rows, appended := m.store.Snapshot()
	m.session.Reload(rows)
	m.appended = int(appended)
	logx.Debugf("follow: +%d rows (store %d)", len(batch), len(rows))
	return true
}
