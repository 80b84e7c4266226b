package engine

import (
	"strings"

	"github.com/rotisserie/eris"

	"boqview/internal/model"
	"boqview/internal/query"
	"boqview/internal/util/logx"
)

type Options struct {
	DefaultLimit int
	PageSize     int
}

// View is the derived state of a session. Slices are shared with the session
// and must be treated as read-only.
type View struct {
	Working  []model.WorkingRow
	Filtered []model.WorkingRow
	Page     []model.WorkingRow
	Options  map[model.Dimension][]string
	Totals   Totals

	PageNum       int
	PageCount     int
	PendingInView int
}

// State is a copy of the explicit (non-derived) session state.
type State struct {
	Draft     model.Query
	Query     model.Query
	Filters   model.FacetFilters
	Page      int
	Pending   []string
	Committed int
	Message   string
}

// Session owns one explorer's state: draft and committed query, facet
// filters, the mutation ledger and the pager. Every change recomputes the
// affected derived views from current state; nothing is updated in place.
// Not safe for concurrent use.
type Session struct {
	opts Options
	rows []model.Row

	draft    model.Query
	query    model.Query
	compiled *query.Compiled
	// invalid is set when the last submission failed to compile; the working set is then empty.
	invalid bool

	filters model.FacetFilters
	ledger  *Ledger
	pager   Pager
	message string

	view  View
	index map[string]struct{}
}

func NewSession(rows []model.Row, opts Options) *Session {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	s := &Session{
		opts:    opts,
		rows:    rows,
		draft:   model.Query{Mode: model.MatchAll},
		query:   model.Query{Mode: model.MatchAll},
		filters: model.FacetFilters{},
		ledger:  NewLedger(),
		pager:   NewPager(opts.PageSize),
	}
	s.rebuild()
	return s
}

func (s *Session) View() View { return s.view }

func (s *Session) State() State {
	return State{
		Draft:     s.draft,
		Query:     s.query,
		Filters:   s.filters.Clone(),
		Page:      s.pager.Page,
		Pending:   s.ledger.PendingIDs(),
		Committed: s.ledger.CommittedCount(),
		Message:   s.message,
	}
}

func (s *Session) Options() Options { return s.opts }

func (s *Session) Message() string { return s.message }

// Keywords are the draft tokens, used for highlighting while typing.
func (s *Session) Keywords() []string { return query.Keywords(s.draft.Text) }

func (s *Session) IsPending(id string) bool { return s.ledger.IsPending(id) }

func (s *Session) SetDraft(text string) { s.draft.Text = text }

func (s *Session) SetWhere(expr string) { s.draft.Where = expr }

func (s *Session) SetMode(mode model.MatchMode) {
	if mode != model.MatchAny {
		mode = model.MatchAll
	}
	s.draft.Mode = mode
}

func (s *Session) ToggleMode() model.MatchMode {
	if s.draft.Mode == model.MatchAny {
		s.draft.Mode = model.MatchAll
	} else {
		s.draft.Mode = model.MatchAny
	}
	return s.draft.Mode
}

// Submit adopts the draft as the committed query. Facets, pending marks and
// the page are reset; committed removals are kept. A draft that fails to
// compile empties the working set and returns the typed error.
func (s *Session) Submit() error {
	q := model.Query{
		Text:  strings.TrimSpace(s.draft.Text),
		Mode:  s.draft.Mode,
		Where: strings.TrimSpace(s.draft.Where),
	}
	compiled, err := query.CompileQuery(q)

	s.filters = model.FacetFilters{}
	s.ledger.ClearPending()
	s.pager.Reset()
	s.message = ""

	if err != nil {
		logx.Warnf("search: %v", err)
		s.query = model.Query{Mode: q.Mode}
		s.compiled = nil
		s.invalid = true
		s.message = messageFor(err)
		s.rebuild()
		return err
	}
	s.query = q
	s.compiled = compiled
	s.invalid = false
	s.rebuild()
	logx.Debugf("search: text=%q mode=%s where=%q -> %d rows", q.Text, q.Mode, q.Where, len(s.view.Working))
	return nil
}

func messageFor(err error) string {
	if eris.Is(err, query.ErrInvalidExpression) {
		return "Invalid where expression"
	}
	return "Invalid search pattern"
}

// SetFacet replaces the selection for dim (cascading to deeper levels) and
// returns to the first page. The ledger is untouched.
func (s *Session) SetFacet(dim model.Dimension, values []string) {
	s.filters = WithSelection(s.filters, dim, values)
	s.pager.Reset()
	s.refilter(s.view.Working)
}

func (s *Session) ClearFilters() {
	s.filters = model.FacetFilters{}
	s.pager.Reset()
	s.refilter(s.view.Working)
}

// TogglePending marks or unmarks a row of the working set. Unknown ids are ignored.
func (s *Session) TogglePending(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	on := s.ledger.TogglePending(id)
	s.recount()
	return on
}

// Apply commits the pending rows visible in the filtered view and returns how
// many were removed. The page only moves if it would fall past the end.
func (s *Session) Apply() int {
	if s.ledger.PendingCount() == 0 {
		return 0
	}
	visible := make([]string, len(s.view.Filtered))
	for i, r := range s.view.Filtered {
		visible[i] = r.ID
	}
	moved := s.ledger.Apply(visible)
	if len(moved) == 0 {
		return 0
	}
	s.rebuild()
	logx.Infof("apply: removed %d rows (committed=%d pending=%d)", len(moved), s.ledger.CommittedCount(), s.ledger.PendingCount())
	return len(moved)
}

// Undo clears every pending mark. Committed rows stay removed.
func (s *Session) Undo() {
	s.ledger.ClearPending()
	s.recount()
}

// Reload swaps in a new source snapshot, keeping query, ledger and filters.
func (s *Session) Reload(rows []model.Row) {
	s.rows = rows
	s.rebuild()
}

func (s *Session) NextPage() bool  { return s.paged(s.pager.Next(len(s.view.Filtered))) }
func (s *Session) PrevPage() bool  { return s.paged(s.pager.Prev()) }
func (s *Session) FirstPage() bool { return s.paged(s.pager.First()) }
func (s *Session) LastPage() bool  { return s.paged(s.pager.Last(len(s.view.Filtered))) }

func (s *Session) GoToPage(page int) bool {
	return s.paged(s.pager.GoTo(page, len(s.view.Filtered)))
}

func (s *Session) paged(moved bool) bool {
	if moved {
		s.repage()
	}
	return moved
}

// rebuild rematerializes the working set from the source rows.
func (s *Session) rebuild() {
	var working []model.WorkingRow
	if !s.invalid {
		var pred Predicate
		if s.compiled != nil {
			pred = s.compiled
		}
		working = BuildWorkingSet(s.rows, pred, s.opts.DefaultLimit, s.ledger.IsCommitted)
	}
	s.refilter(working)
}

// refilter derives everything downstream of the working set.
func (s *Session) refilter(working []model.WorkingRow) {
	filters := Reconcile(working, s.filters)
	filtered := ApplyFacets(working, filters)
	options := make(map[model.Dimension][]string, len(model.Dimensions))
	for _, d := range model.Dimensions {
		options[d] = FacetOptions(working, filters, d)
	}
	index := make(map[string]struct{}, len(working))
	for _, r := range working {
		index[r.ID] = struct{}{}
	}
	pager := s.pager
	pager.Clamp(len(filtered))

	s.filters = filters
	s.pager = pager
	s.index = index
	s.view = View{
		Working:   working,
		Filtered:  filtered,
		Options:   options,
		Totals:    Aggregate(filtered),
		PageCount: PageCount(len(filtered), pager.Size),
	}
	s.repage()
	s.recount()
}

func (s *Session) repage() {
	start, end := s.pager.Window(len(s.view.Filtered))
	s.view.Page = s.view.Filtered[start:end]
	s.view.PageNum = s.pager.Page
}

func (s *Session) recount() {
	n := 0
	for _, r := range s.view.Filtered {
		if s.ledger.IsPending(r.ID) {
			n++
		}
	}
	s.view.PendingInView = n
}
