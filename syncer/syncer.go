// Package syncer drives a synchronization run: it fetches every remote
// language in parallel, reconciles each one against its local file and
// either writes the merged files and pushes new terms (Sync) or only
// reports whether anything differs (Compare).
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/poesync/i18n"
	"github.com/minios-linux/poesync/lockfile"
	"github.com/minios-linux/poesync/logger"
	"github.com/minios-linux/poesync/poeditor"
	"github.com/minios-linux/poesync/reconcile"
	"github.com/minios-linux/poesync/store"
	"github.com/minios-linux/poesync/terms"
)

// Remote is the part of the POEditor client a run needs.
type Remote interface {
	ListLanguages(ctx context.Context) ([]poeditor.Language, error)
	ExportLanguage(ctx context.Context, lang string) (string, error)
	FetchExport(ctx context.Context, url string) ([]terms.Term, error)
	AddTerms(ctx context.Context, list []terms.Term) (poeditor.TermsResult, error)
}

// RerunCommand is the command suggested when compare finds drift.
const RerunCommand = "poesync --token=[API_TOKEN] --id=[PROJECT_ID]"

// Options tunes a Syncer.
type Options struct {
	// Concurrency caps parallel language fetches (0 = all at once).
	Concurrency int
	// Journal, if set, records written files and reports local edits.
	Journal *lockfile.LockFile
}

// Syncer runs sync and compare passes against one project and one
// translations root.
type Syncer struct {
	remote Remote
	store  *store.Store
	log    *logger.Logger
	opts   Options
}

// New returns a Syncer.
func New(remote Remote, st *store.Store, log *logger.Logger, opts Options) *Syncer {
	if log == nil {
		log = logger.Discard()
	}
	return &Syncer{remote: remote, store: st, log: log, opts: opts}
}

// Record is the per-language state collected in one run.
type Record struct {
	Language string
	Local    []terms.Term
	Remote   []terms.Term
	Unique   []terms.Term
	// LocalMissing is set when the local file was absent or unreadable and
	// Local was taken from Remote.
	LocalMissing bool
	// Err is the remote failure for this language, if any.
	Err error
}

// collect lists the remote languages and gathers every language's record
// in parallel. It returns once every language has settled. In write mode a
// missing or unreadable local file is replaced by an empty placeholder.
func (s *Syncer) collect(ctx context.Context, write bool) ([]Record, error) {
	langs, err := s.remote.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}

	records := make([]Record, len(langs))

	var g errgroup.Group
	if s.opts.Concurrency > 0 {
		g.SetLimit(s.opts.Concurrency)
	}
	for i, lang := range langs {
		i, lang := i, lang
		g.Go(func() error {
			records[i] = s.collectLanguage(ctx, lang.Code, write)
			return nil
		})
	}
	_ = g.Wait()

	return records, nil
}

func (s *Syncer) collectLanguage(ctx context.Context, lang string, write bool) Record {
	rec := Record{Language: lang}

	url, err := s.remote.ExportLanguage(ctx, lang)
	if err != nil {
		rec.Err = fmt.Errorf("exporting %s: %w", lang, err)
		return rec
	}
	remote, err := s.remote.FetchExport(ctx, url)
	if err != nil {
		rec.Err = fmt.Errorf("fetching %s export: %w", lang, err)
		return rec
	}
	rec.Remote = remote

	local, err := s.store.Load(lang)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Error(err)
		}
		if write {
			if err := s.store.Touch(lang); err != nil {
				s.log.Error(err)
			}
		}
		rec.LocalMissing = true
		local = remote
	}
	rec.Local = local
	rec.Unique = reconcile.Unique(local, remote)

	return rec
}

// healthy logs every failed record and returns the rest.
func (s *Syncer) healthy(records []Record) (ok []Record, failed []string) {
	for _, r := range records {
		if r.Err != nil {
			s.log.Error(r.Err)
			s.log.Errorf(i18n.T("Skipping '%s': no remote data"), r.Language)
			failed = append(failed, r.Language)
			continue
		}
		ok = append(ok, r)
	}
	return ok, failed
}

// newTerms aggregates the unique terms of every record, first occurrence
// winning.
func newTerms(records []Record) []terms.Term {
	var all []terms.Term
	for _, r := range records {
		all = append(all, r.Unique...)
	}
	return reconcile.Dedupe(all)
}
