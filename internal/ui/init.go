package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"boqview/internal/ai"
	"boqview/internal/config"
	"boqview/internal/engine"
	"boqview/internal/ingest"
	"boqview/internal/model"
	"boqview/internal/util/logx"
)

const tickEvery = 200 * time.Millisecond

func initialModel(ctx context.Context, cfg *config.Config, src Source) *Model {
	store := model.NewStore(src.Rows)
	rows, _ := store.Snapshot()
	m := &Model{
		ctx:     ctx,
		cfg:     cfg,
		store:   store,
		session: engine.NewSession(rows, engine.Options{DefaultLimit: cfg.DefaultLimit, PageSize: cfg.PageSize}),
		source:  src,
		styles:  NewStyles(cfg.Theme == config.ThemeDark),
		keymap:  DefaultKeyMap(),
		input:   textinput.New(),
		spin:    spinner.New(),
	}
	if !cfg.Offline {
		m.summarizer = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, time.Duration(cfg.OpenAITimeoutSec)*time.Second)
	}
	m.session.SetMode(cfg.MatchMode())
	m.spin.Spinner = spinner.Dot
	m.input.CharLimit = 256
	m.modalVP = viewport.New(80, 20)

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(m.cfg.PageSize))
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableStyles.Header
	ts.Cell = m.styles.TableStyles.Cell
	ts.Selected = m.styles.TableStyles.Selected
	m.tbl.SetStyles(ts)
	m.applyColumns()
	m.refreshTable()
	return m
}

// startFollow opens the row stream for follow mode. CSV sources are tailed;
// the demo source keeps generating rows.
func (m *Model) startFollow() {
	if !m.source.Follow {
		return
	}
	switch m.source.Kind {
	case string(ingest.SourceCSV):
		m.rows, m.errs = ingest.Follow(m.ctx, m.source.Path, m.source.Header)
	case string(ingest.SourceDemo):
		m.rows = ingest.FollowDemo(m.ctx, 2*time.Second)
	default:
		logx.Warnf("follow: not supported for %s sources", m.source.Kind)
		return
	}
	logx.Infof("follow: streaming appended rows from %s", m.source.Label)
}

func Run(ctx context.Context, cfg *config.Config, src Source) error {
	m := initialModel(ctx, cfg, src)
	m.startFollow()
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	if m.rows != nil || m.errs != nil {
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(time.Time) tea.Msg { return tickMsg{} })
}
