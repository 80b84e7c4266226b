package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	Search      tea.Key
	Where       tea.Key
	Mode        tea.Key
	GoToPage    tea.Key
	FacetWBS1   tea.Key
	FacetWBS2   tea.Key
	FacetWBS3   tea.Key
	FacetWBS4   tea.Key
	FacetUnit   tea.Key
	ClearFilter tea.Key
	Mark        tea.Key
	MarkAlt     tea.Key
	Apply       tea.Key
	Undo        tea.Key
	PrevPage    tea.Key
	NextPage    tea.Key
	FirstPage   tea.Key
	LastPage    tea.Key
	Detail      tea.Key
	Stats       tea.Key
	ExportCSV   tea.Key
	ExportPDF   tea.Key
	ExportXLSX  tea.Key
	ExportJSON  tea.Key
	ExportAll   tea.Key
	Summarize   tea.Key
	CopyRow     tea.Key
	AppLogs     tea.Key
	Help        tea.Key
	Quit        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Search:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		Where:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'w'}},
		Mode:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'m'}},
		GoToPage:    tea.Key{Type: tea.KeyRunes, Runes: []rune{':'}},
		FacetWBS1:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'1'}},
		FacetWBS2:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'2'}},
		FacetWBS3:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'3'}},
		FacetWBS4:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'4'}},
		FacetUnit:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'u'}},
		ClearFilter: tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		Mark:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'x'}},
		MarkAlt:     tea.Key{Type: tea.KeyRunes, Runes: []rune{' '}},
		Apply:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'a'}},
		Undo:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'z'}},
		PrevPage:    tea.Key{Type: tea.KeyLeft},
		NextPage:    tea.Key{Type: tea.KeyRight},
		FirstPage:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		LastPage:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		Detail:      tea.Key{Type: tea.KeyEnter},
		Stats:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'s'}},
		ExportCSV:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		ExportPDF:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'p'}},
		ExportXLSX:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'X'}},
		ExportJSON:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'J'}},
		ExportAll:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'E'}},
		Summarize:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'i'}},
		CopyRow:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		AppLogs:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Help:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Quit:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}

// facetKey maps the facet picker shortcuts to their dimension.
func (km KeyMap) facetKey(msg tea.KeyMsg) (int, bool) {
	for i, k := range []tea.Key{km.FacetWBS1, km.FacetWBS2, km.FacetWBS3, km.FacetWBS4, km.FacetUnit} {
		if keyMatches(msg, k) {
			return i, true
		}
	}
	return 0, false
}
