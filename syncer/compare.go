package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/minios-linux/poesync/i18n"
	"github.com/minios-linux/poesync/reconcile"
)

// Exit codes returned by Compare.
const (
	ExitNoChanges = 0
	ExitChanges   = 1
)

// Compare fetches and diffs like Sync but never writes files or calls
// POEditor's write endpoints. It returns ExitChanges when any local term is
// missing remotely, when any term is unique to either side, or when a
// language could not be fetched; ExitNoChanges otherwise. The error is only
// set when the language list itself could not be fetched.
func (s *Syncer) Compare(ctx context.Context) (int, error) {
	s.log.Info(i18n.T("Checking for changes..."))

	records, err := s.collect(ctx, false)
	if err != nil {
		s.log.Error(err)
		return ExitChanges, err
	}

	ok, failed := s.healthy(records)

	differentTerms := false
	uniqueTerms := false
	for _, r := range ok {
		if missing := reconcile.Difference(r.Local, r.Remote); len(missing) > 0 {
			differentTerms = true
			s.log.Infof(i18n.N("'%s': %d local term not on POEditor: %s",
				"'%s': %d local terms not on POEditor: %s", len(missing)),
				r.Language, len(missing), strings.Join(reconcile.Keys(missing), ", "))
		}
		if len(r.Unique) > 0 {
			uniqueTerms = true
		}
		s.reportJournal(r)
	}

	if langs := s.unknownLocal(records); len(langs) > 0 {
		s.log.Infof(i18n.T("Local languages not on POEditor: %s"), strings.Join(langs, ", "))
	}

	hasChanges := differentTerms || uniqueTerms || len(failed) > 0
	if hasChanges {
		s.log.Error(fmt.Sprintf(i18n.T("Found changes in translation files, please run `%s` and re-commit"), RerunCommand))
		return ExitChanges, nil
	}

	s.log.Info(i18n.T("No changes found"))
	return ExitNoChanges, nil
}

// reportJournal logs local entries edited since the last recorded sync.
func (s *Syncer) reportJournal(r Record) {
	j := s.opts.Journal
	if j == nil || r.LocalMissing || !j.Has(r.Language) {
		return
	}
	if changed := j.Changed(r.Language, r.Local); len(changed) > 0 {
		s.log.Infof(i18n.T("'%s': edited since last sync: %s"), r.Language, strings.Join(changed, ", "))
	}
	if removed := j.Removed(r.Language, r.Local); len(removed) > 0 {
		s.log.Infof(i18n.T("'%s': removed since last sync: %s"), r.Language, strings.Join(removed, ", "))
	}
}

// unknownLocal returns local language directories POEditor does not know.
func (s *Syncer) unknownLocal(records []Record) []string {
	remote := make(map[string]bool, len(records))
	for _, r := range records {
		remote[r.Language] = true
	}

	var out []string
	for _, lang := range s.store.Languages() {
		if !remote[lang] {
			out = append(out, lang)
		}
	}
	return out
}
