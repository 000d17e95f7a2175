package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/briefing"
	"github.com/orestes-garcia-martinez/careerclaw/internal/enhance"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/logger"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/sources"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
	"github.com/orestes-garcia-martinez/careerclaw/internal/tracking"
)

const (
	PromptShowDrafts      = "Show drafts"
	PromptSaveMatches     = "Save matches to tracking"
	PromptMarkApplied     = "Mark a match as applied"
	PromptReportByCompany = "Report by company"
	PromptMatchesToFile   = "Dump matches to file"
	PromptResultToFile    = "Dump result to file"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch jobs, rank them against the profile and draft outreach for the top matches",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("profile", "p", "", "profile JSON file (required)")
	runCmd.Flags().StringP("resume", "r", "", "plain text resume file")
	runCmd.Flags().IntP("top-k", "k", briefing.DefaultTopK, "number of matches to draft")
	runCmd.Flags().String("user-id", "", "user id recorded in the run log")
	runCmd.Flags().String("timeout", "", "deadline for the whole run, as seconds or a duration")
	runCmd.Flags().String("metrics-file", "", "write enhancer metrics in the Prometheus text format to this file")
	runCmd.Flags().StringSlice("jobs-file", nil, "JSON file with jobs to add to the fetched ones (repeatable)")
	runCmd.Flags().Bool("no-remoteok", false, "do not fetch the RemoteOK feed")
	runCmd.Flags().StringP("exclude-file", "e", "", "file with jobs to exclude, as written by the dump actions")
	runCmd.Flags().Bool("keep-tracked", false, "do not exclude jobs already applied to or rejected")
	runCmd.Flags().Bool("dry-run", false, "do not write tracking files")
	runCmd.Flags().BoolP("yes", "y", false, "do not show the menu; save matches right away unless --dry-run is set")
	runCmd.Flags().Bool("json", false, "print the result as JSON instead of the briefing; implies --yes")

	viper.BindPFlag("profile", runCmd.Flags().Lookup("profile"))
	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("top-k", runCmd.Flags().Lookup("top-k"))
	viper.BindPFlag("user-id", runCmd.Flags().Lookup("user-id"))
	viper.BindPFlag("timeout", runCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("metrics-file", runCmd.Flags().Lookup("metrics-file"))
	viper.BindPFlag("sources.remoteok.disabled", runCmd.Flags().Lookup("no-remoteok"))
	viper.BindPFlag("filters.exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("filters.keep-tracked", runCmd.Flags().Lookup("keep-tracked"))
}

// session is the state shared by the menu actions.
type session struct {
	orch   *briefing.Orchestrator
	store  *tracking.Repository
	result *briefing.Result
	opts   briefing.Options
	logger *zap.Logger
	out    io.Writer
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json-log"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the careerclaw", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.Profile) == "" {
		logger.Fatal("profile is required", zap.String("hint", "pass --profile or set 'profile' in the configuration file"))
	}

	profile, err := jobs.LoadProfile(config.Profile)
	if err != nil {
		logger.Fatal("loading profile", zap.Error(err))
	}

	intel, err := loadIntelligence(profile, config.Resume)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err))
	}
	logger.Info("resume intelligence built",
		zap.String("source", string(intel.Source())),
		zap.Int("signals", intel.Len()),
	)

	extraFiles, _ := cmd.Flags().GetStringSlice("jobs-file")
	srcs := buildSources(config.Sources, extraFiles, logger)
	if len(srcs) == 0 {
		logger.Fatal("no job sources configured", zap.String("hint", "enable remoteok or pass --jobs-file"))
	}

	registry := prometheus.NewRegistry()
	enhancer, err := newEnhancer(config, registry, logger)
	if err != nil {
		logger.Fatal("configuring llm enhancement", zap.Error(err))
	}

	timeout, err := enhance.ParseSeconds(config.Timeout)
	if err != nil {
		logger.Fatal("parsing timeout", zap.Error(err))
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	autoApprove, _ := cmd.Flags().GetBool("yes")
	asJSON, _ := cmd.Flags().GetBool("json")
	interactive := !autoApprove && !asJSON

	store := tracking.New(config.Dir)
	orch := briefing.New(srcs,
		briefing.WithStore(store),
		briefing.WithEnhancer(enhancer),
		briefing.WithLogger(logger),
	)

	// The menu decides about tracking, so an interactive run starts as a
	// preview.
	opts := briefing.Options{
		UserID:  config.UserID,
		TopK:    config.TopK,
		DryRun:  dryRun || interactive,
		Timeout: timeout,
		Filters: config.Filters,
	}

	result, err := orch.Run(ctx, profile, intel, opts)
	if err != nil {
		logger.Fatal("running the briefing", zap.Error(err))
	}

	if config.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(config.MetricsFile, registry); err != nil {
			logger.Warn("writing metrics file", zap.String("filename", config.MetricsFile), zap.Error(err))
		}
	}

	if asJSON {
		if err := briefing.WriteJSON(os.Stdout, result); err != nil {
			logger.Fatal("writing result", zap.Error(err))
		}
		return
	}

	if err := briefing.WriteSummary(os.Stdout, result); err != nil {
		logger.Fatal("writing briefing", zap.Error(err))
	}

	if !interactive || len(result.TopMatches) == 0 {
		return
	}

	s := &session{orch: orch, store: store, result: result, opts: opts, logger: logger, out: os.Stdout}
	items := []string{PromptShowDrafts, PromptReportByCompany, PromptMatchesToFile, PromptResultToFile, PromptExit}
	if !dryRun {
		items = append([]string{PromptSaveMatches, PromptMarkApplied}, items...)
	}
	prompt := promptui.Select{
		Label: "What next?",
		Items: items,
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, s); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, s *session) error {
	switch action {
	case PromptShowDrafts:
		for i, d := range s.result.Drafts {
			fmt.Fprintf(s.out, "\n--- Draft #%d (job_id=%s) ---\n%s\n", i+1, d.JobID, d.Text)
		}
		return nil
	case PromptSaveMatches:
		if s.result.RunID != "" {
			s.logger.Info("matches are already saved", zap.String("run_id", s.result.RunID))
			return nil
		}
		if err := s.orch.Track(s.result, s.opts); err != nil {
			return fmt.Errorf("saving matches: %w", err)
		}
		s.logger.Info("saved matches to tracking",
			zap.String("run_id", s.result.RunID),
			zap.Int("created", s.result.Tracking.Created),
			zap.Int("already_present", s.result.Tracking.AlreadyPresent),
			zap.String("dir", s.store.Dir()),
		)
		return nil
	case PromptMarkApplied:
		return markApplied(s)
	case PromptReportByCompany:
		matches := matchedList(s.result)
		pretty, _ := json.MarshalIndent(matches.ReportByCompany(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("matches count", matches.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := matchedList(s.result).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		s.logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptResultToFile:
		filename, err := briefing.DumpToTmpFile(s.result)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// markApplied lets the user pick matches one by one and records them as
// applied. Picked matches leave the list.
func markApplied(s *session) error {
	remaining := matchedList(s.result)
	for {
		items := make([]string, 0, remaining.Len()+1)
		for _, job := range remaining.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %s", job.ID, job.Title, job.Company, job.URL))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		job := remaining.FindByID(id)
		if job == nil {
			return fmt.Errorf("there is no such job id %s", id)
		}

		if _, _, err := s.store.UpsertSaved([]jobs.Job{*job}); err != nil {
			return fmt.Errorf("saving job %s: %w", id, err)
		}
		if _, err := s.store.SetStatus(id, tracking.StatusApplied); err != nil {
			return err
		}

		s.logger.Info("marked job as applied", logger.JobFields(job.ID, job.Title, zap.String("company", job.Company))...)
		remaining.Exclude(jobs.IDField, []string{id})
	}
}

func matchedList(r *briefing.Result) *jobs.List {
	items := make([]jobs.Job, 0, len(r.TopMatches))
	for _, m := range r.TopMatches {
		items = append(items, m.Job)
	}
	return jobs.NewList(items...)
}

func loadIntelligence(profile *jobs.Profile, resumePath string) (*resume.Intelligence, error) {
	text := ""
	if resumePath = strings.TrimSpace(resumePath); resumePath != "" {
		data, err := os.ReadFile(resumePath)
		if err != nil {
			return nil, fmt.Errorf("reading resume %q: %w", resumePath, err)
		}
		text = string(data)
	}
	return resume.NewBuilder(textsignal.DefaultPolicy()).Build(resume.InputFromProfile(profile, text)), nil
}

func buildSources(cfg *SourcesConfig, extraFiles []string, logger *zap.Logger) []sources.Source {
	if cfg == nil {
		cfg = &SourcesConfig{}
	}

	var srcs []sources.Source
	if cfg.RemoteOK == nil || !cfg.RemoteOK.Disabled {
		client := sources.NewClient(logger)
		if cfg.UserAgent != "" {
			client.UserAgent = cfg.UserAgent
		}
		remoteOK := sources.NewRemoteOK(client, logger)
		if cfg.RemoteOK != nil {
			if cfg.RemoteOK.URL != "" {
				remoteOK.URL = cfg.RemoteOK.URL
			}
			if cfg.RemoteOK.Limit > 0 {
				remoteOK.Limit = cfg.RemoteOK.Limit
			}
		}
		srcs = append(srcs, remoteOK)
	}

	for _, path := range append(cfg.Files, extraFiles...) {
		if path = strings.TrimSpace(path); path != "" {
			srcs = append(srcs, sources.NewFile(path, logger))
		}
	}
	return srcs
}

func newEnhancer(config *Config, reg prometheus.Registerer, logger *zap.Logger) (*enhance.Enhancer, error) {
	cfg, err := config.LLM.Config()
	if err != nil {
		return nil, err
	}

	keys, err := resolveKeys(config.Keys, config.LLM)
	if err != nil {
		return nil, err
	}

	enhancer := enhance.New(cfg, keys,
		enhance.WithLogger(logger),
		enhance.WithMetrics(enhance.NewMetrics(reg)),
	)
	if !enhancer.Enabled() {
		logger.Info("llm enhancement is off; drafts stay deterministic",
			zap.Int("chain_length", len(cfg.Chain)),
			zap.Int("configured_keys", len(keys)),
		)
	}
	return enhancer, nil
}
