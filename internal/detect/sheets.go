package detect

import (
	"strings"

	"github.com/rotisserie/eris"

	"boqview/internal/ingest"
	"boqview/internal/util/logx"
)

// Candidate is one worksheet and whether its header carries every required column.
type Candidate struct {
	Name    string
	Valid   bool
	Missing []string
}

// Sheets lists the worksheets of an xlsx workbook in workbook order.
func Sheets(path string) ([]Candidate, error) {
	names, heads, err := ingest.FirstRow(path)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		missing := ingest.MissingColumns(heads[n])
		out = append(out, Candidate{Name: n, Valid: len(missing) == 0, Missing: missing})
	}
	return out, nil
}

// Valid keeps the names of the valid candidates.
func Valid(cands []Candidate) []string {
	var out []string
	for _, c := range cands {
		if c.Valid {
			out = append(out, c.Name)
		}
	}
	return out
}

// ChooseOptions controls sheet resolution.
type ChooseOptions struct {
	// Requested is an explicit sheet name; it wins if valid.
	Requested string
	NoCache   bool
	Cache     Cache
}

// Choose picks the sheet to load: the requested one, else the cached choice
// for this workbook if still valid, else the first valid sheet. The pick is
// cached unless NoCache is set.
func Choose(path string, opt ChooseOptions) (string, error) {
	cands, err := Sheets(path)
	if err != nil {
		return "", err
	}
	valid := Valid(cands)

	if req := strings.TrimSpace(opt.Requested); req != "" {
		for _, c := range cands {
			if c.Name != req {
				continue
			}
			if !c.Valid {
				return "", eris.Wrapf(ingest.ErrMissingColumns, "sheet %q missing %s", req, strings.Join(c.Missing, ", "))
			}
			remember(path, req, opt)
			return req, nil
		}
		return "", eris.Wrapf(ingest.ErrNoValidSheet, "sheet %q not found", req)
	}

	if len(valid) == 0 {
		return "", eris.Wrapf(ingest.ErrNoValidSheet, "%s has %d sheets", path, len(cands))
	}
	if !opt.NoCache {
		if s, ok := opt.Cache.Load(path); ok && contains(valid, s) {
			logx.Debugf("detect: using cached sheet %q for %s", s, path)
			return s, nil
		}
	}
	remember(path, valid[0], opt)
	return valid[0], nil
}

func remember(path, sheet string, opt ChooseOptions) {
	if opt.NoCache || opt.Cache.Dir == "" {
		return
	}
	if err := opt.Cache.Save(path, sheet); err != nil {
		logx.Warnf("detect: cache save failed: %v", err)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
