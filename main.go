// poesync: synchronize POEditor translations with local JSON files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/poesync/config"
	"github.com/minios-linux/poesync/i18n"
	"github.com/minios-linux/poesync/lockfile"
	"github.com/minios-linux/poesync/logger"
	"github.com/minios-linux/poesync/poeditor"
	"github.com/minios-linux/poesync/settings"
	"github.com/minios-linux/poesync/store"
	"github.com/minios-linux/poesync/syncer"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Shared flags
// ---------------------------------------------------------------------------

type rootOptions struct {
	root        string
	token       string
	projectID   string
	outDir      string
	proxy       string
	timeout     time.Duration
	concurrency int
	compare     bool

	log  *logger.Logger
	exit int
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *rootOptions) {
	o := &rootOptions{log: logger.New(stdout, stderr)}

	root := &cobra.Command{
		Use:   "poesync",
		Short: "Synchronize POEditor translations with local JSON files",
		Long: `poesync: synchronize POEditor translations with local JSON files.

Fetches every project language from POEditor, merges it into
<out-dir>/<lang>/common.json (remote values win, local-only keys are kept),
and adds newly discovered terms to the POEditor project.

With --compare nothing is written: poesync only reports whether local
files and POEditor differ and exits with status 1 if they do. Use it in CI.

Configuration may also come from .poesync.yaml in the project root and
from POEDITOR_API_TOKEN / POEDITOR_PROJECT_ID.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			return runSync(cmd.Context(), cmd, o)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("poesync version {{.Version}}\n  commit:    %s\n  built:     %s\n", commit, date))

	pf := root.PersistentFlags()
	pf.StringVar(&o.root, "root", ".", "Project root directory")
	pf.StringVarP(&o.token, "token", "t", "", "POEditor API token")
	pf.StringVarP(&o.projectID, "id", "i", "", "POEditor project ID")
	pf.StringVar(&o.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	pf.DurationVar(&o.timeout, "timeout", 0, "Per-request timeout (default 60s)")

	f := root.Flags()
	f.StringVarP(&o.outDir, "out-dir", "o", "", "Translations root (default "+config.DefaultOutDir+")")
	f.BoolVarP(&o.compare, "compare", "c", false, "Only check for changes, exit 1 if any are found")
	f.IntVar(&o.concurrency, "concurrency", 0, "Maximum parallel language fetches (0 = all)")

	root.AddCommand(
		newTermsCmd(o),
		newAuthCmd(o),
	)

	return root, o
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root, o := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		o.log.Error(err)
		return 1
	}
	return o.exit
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// loadConfig merges .poesync.yaml, the environment, command line flags and
// the stored token, in increasing order of priority (the stored token is
// only a fallback).
func loadConfig(cmd *cobra.Command, o *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(o.root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		cfg.Token = o.token
	}
	if flags.Changed("id") {
		cfg.ProjectID = o.projectID
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = o.outDir
	}
	if flags.Changed("proxy") {
		cfg.Proxy = o.proxy
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}

	cfg.Token = settings.ResolveToken(cfg.Token, cfg.ProjectID)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *poeditor.Client {
	return poeditor.New(poeditor.Options{
		Token:     cfg.Token,
		ProjectID: cfg.ProjectID,
		BaseURL:   cfg.BaseURL,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.Timeout,
	})
}

// ---------------------------------------------------------------------------
// sync / compare
// ---------------------------------------------------------------------------

func runSync(ctx context.Context, cmd *cobra.Command, o *rootOptions) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}

	opts := syncer.Options{Concurrency: cfg.Concurrency}
	if !cfg.NoJournal {
		journal, err := lockfile.Load(cfg.JournalDir())
		if err != nil {
			o.log.Error(err)
		} else {
			opts.Journal = journal
		}
	}

	st := store.New(cfg.TranslationsDir(), cfg.FileName)
	s := syncer.New(newClient(cfg), st, o.log, opts)

	if o.compare {
		// Compare logs its own failures; the exit code carries the result.
		o.exit, _ = s.Compare(ctx)
		return nil
	}

	if _, err := s.Sync(ctx); err != nil {
		o.exit = 1
	}
	return nil
}

// ---------------------------------------------------------------------------
// terms (read-only: list remote terms of a language)
// ---------------------------------------------------------------------------

func newTermsCmd(o *rootOptions) *cobra.Command {
	var lang, format string

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List the POEditor terms of a language",
		Long: `List every term of the POEditor project together with its
translation in the given language. Does not modify anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}

			list, err := newClient(cfg).ListTerms(cmd.Context(), lang)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list) == 0 {
				o.log.Infof(i18n.T("No terms found for '%s'"), lang)
				return nil
			}
			for _, t := range list {
				fmt.Fprintf(out, "%s\t%s\n", t.Term, t.Text())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language code (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}

// ---------------------------------------------------------------------------
// auth (stored API tokens)
// ---------------------------------------------------------------------------

func newAuthCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored POEditor API tokens",
		Long: `Store POEditor API tokens per project so --token can be omitted.

Tokens are kept in ` + "`$XDG_DATA_HOME/poesync/auth.json`" + ` with 0600 permissions.
A --token flag or POEDITOR_API_TOKEN always takes precedence.`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(o),
		newAuthLogoutCmd(o),
		newAuthListCmd(o),
	)
	return cmd
}

func newAuthLoginCmd(o *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API token for a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.projectID == "" || o.token == "" {
				return fmt.Errorf("both --id and --token are required")
			}
			if err := settings.SetToken(o.projectID, o.token, name); err != nil {
				return err
			}
			o.log.Infof(i18n.T("Token for project %s saved to %s"), o.projectID, settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Optional label for the project")
	return cmd
}

func newAuthLogoutCmd(o *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored API tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				o.log.Info(i18n.T("All stored tokens removed"))
				return nil
			}
			if o.projectID == "" {
				return fmt.Errorf("--id or --all is required")
			}
			if err := settings.Remove(o.projectID); err != nil {
				return err
			}
			o.log.Infof(i18n.T("Token for project %s removed"), o.projectID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every stored token")
	return cmd
}

func newAuthListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with a stored token",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			creds := settings.Load()
			if len(creds) == 0 {
				o.log.Info(i18n.T("No stored tokens"))
				return
			}
			out := cmd.OutOrStdout()
			for _, id := range creds.Projects() {
				info := creds[id]
				fmt.Fprintf(out, "%s\t%s\t%s\n", id, settings.MaskKey(info.Token), info.Name)
			}
		},
	}
}
