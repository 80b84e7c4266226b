package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"boqview/internal/ai"
	"boqview/internal/config"
	"boqview/internal/engine"
	"boqview/internal/model"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalDetail
	modalFacet
	modalStats
	modalSummary
	modalLogs
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineSearch
	inlineWhere
	inlinePage
)

// Source is the loaded data handed to the UI.
type Source struct {
	Rows []model.Row
	// Header is the CSV header used to decode followed lines.
	Header []string
	// Label describes the source in the status line, e.g. "boq.xlsx:Sheet1".
	Label string
	Path  string
	Kind  string
	// Follow streams appended rows into the store while the UI runs.
	Follow bool
}

type Model struct {
	ctx context.Context
	cfg *config.Config

	// Data
	store   *model.Store
	session *engine.Session
	source  Source
	// follow channels; nil when not following or once closed
	rows     <-chan model.Row
	errs     <-chan error
	appended int

	summarizer *ai.OpenAIClient

	// UI
	tbl        table.Model
	styles     Styles
	input      textinput.Model
	spin       spinner.Model
	keymap     KeyMap
	termWidth  int
	termHeight int

	// status
	lastMsg   string
	exporting bool
	netBusy   bool

	// Modal popup
	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string

	// Help menu state
	helpItems []helpItem
	helpSel   int

	// Facet picker state
	facetDim   model.Dimension
	facetItems []facetItem
	facetSel   int

	// Stats modal dimension
	statsDim model.Dimension

	inlineMode inlineMode
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

// facetItem is one selectable value in the facet picker.
type facetItem struct {
	value    string
	selected bool
}

type tickMsg struct{}

type exportDoneMsg struct {
	format string
	path   string
	rows   int
	err    error
}

type summaryDoneMsg struct {
	text string
	err  error
}

func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg {
		if k.Type == tea.KeyRunes {
			return tea.KeyMsg{Type: k.Type, Runes: k.Runes}
		}
		return tea.KeyMsg{Type: k.Type}
	}
}

func keyLabel(k tea.Key) string {
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 1 {
			r := k.Runes[0]
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		return strings.ToLower(string(k.Runes))
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	default:
		return strings.ToLower(k.String())
	}
}
