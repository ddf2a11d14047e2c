package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/minios-linux/poesync/i18n"
	"github.com/minios-linux/poesync/reconcile"
	"github.com/minios-linux/poesync/terms"
)

// Report summarizes a sync run.
type Report struct {
	// Languages are the remote languages processed successfully.
	Languages []string
	// Failed are the languages skipped because their remote fetch failed.
	Failed []string
	// NewTerms is the de-duplicated set of terms unique to either side of
	// any language; it is appended to every written file.
	NewTerms []terms.Term
	// Pushed are the new terms absent from every remote language, sent to
	// POEditor.
	Pushed []terms.Term
	// Written maps language to the file written for it.
	Written map[string]string
}

// Sync merges remote and local translations, rewrites every language file
// and pushes newly discovered terms to POEditor. Per-language failures are
// logged and do not stop the run; only a failure to list the languages is
// returned.
func (s *Syncer) Sync(ctx context.Context) (*Report, error) {
	s.log.Info(i18n.T("Syncing translations..."))

	records, err := s.collect(ctx, true)
	if err != nil {
		s.log.Error(err)
		return nil, err
	}

	ok, failed := s.healthy(records)
	report := &Report{
		Failed:  failed,
		Written: make(map[string]string),
	}
	report.NewTerms = newTerms(ok)

	for _, r := range ok {
		report.Languages = append(report.Languages, r.Language)

		merged := reconcile.Append(reconcile.Merge(r.Local, r.Remote), report.NewTerms)

		s.log.Infof(i18n.T("Writing '%s' translations to file: %s..."), r.Language, s.store.Path(r.Language))
		path, err := s.store.Write(r.Language, merged)
		if err != nil {
			s.log.Error(err)
			continue
		}
		report.Written[r.Language] = path

		if s.opts.Journal != nil {
			s.opts.Journal.Record(r.Language, merged)
		}
	}

	report.Pushed = pushable(report.NewTerms, ok)
	s.push(ctx, report.Pushed)

	if j := s.opts.Journal; j != nil {
		pruned := s.pruneJournal(records)
		if len(report.Written) > 0 || pruned {
			if err := j.Save(); err != nil {
				s.log.Error(err)
			} else {
				s.log.Infof(i18n.T("Sync journal updated: %s"), j.Summary())
			}
		}
	}

	s.log.Info(i18n.T("Syncing complete"))
	return report, nil
}

// pruneJournal forgets journal languages POEditor no longer lists. Failed
// languages are still listed and keep their entries.
func (s *Syncer) pruneJournal(records []Record) bool {
	listed := make(map[string]bool, len(records))
	for _, r := range records {
		listed[r.Language] = true
	}

	pruned := false
	for _, lang := range s.opts.Journal.Languages() {
		if !listed[lang] {
			s.opts.Journal.RemoveLanguage(lang)
			pruned = true
		}
	}
	return pruned
}

// pushable returns the new terms that no remote language already has.
func pushable(newTerms []terms.Term, records []Record) []terms.Term {
	var out []terms.Term
	for _, t := range newTerms {
		known := false
		for _, r := range records {
			if reconcile.Contains(r.Remote, t.Term) {
				known = true
				break
			}
		}
		if !known {
			out = append(out, t)
		}
	}
	return out
}

func (s *Syncer) push(ctx context.Context, list []terms.Term) {
	s.log.Info(i18n.T("Adding new terms to POEditor..."))
	if len(list) == 0 {
		s.log.Info(i18n.T("No new terms to add"))
		return
	}

	lines := make([]string, 0, len(list))
	for _, t := range list {
		lines = append(lines, fmt.Sprintf("  > %s", t.Term))
	}
	s.log.Info(strings.Join(lines, "\n"))

	res, err := s.remote.AddTerms(ctx, list)
	if err != nil {
		s.log.Error(err)
		return
	}
	s.log.Infof(i18n.T("POEditor parsed %d terms, added %d"), res.Parsed, res.Added)
}
