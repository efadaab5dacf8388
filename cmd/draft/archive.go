package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DoyleJ11/hots-draft-backend/internal/config"
	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/prompt"
	"github.com/DoyleJ11/hots-draft-backend/internal/stats"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

var errNoArchive = errors.New("DATABASE_URL is not set")

func newReplayCmd(a *app) *cobra.Command {
	var snapshot, rules string
	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Check a draft written by run --out against the current stats and rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if snapshot == "" {
				snapshot = a.cfg.StatsSnapshotPath
			}
			if rules == "" {
				rules = a.cfg.HeroConfigPath
			}
			return replayFile(cmd, args[0], snapshot, rules)
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "stats snapshot (default from STATS_SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&rules, "rules", "", "rules TOML (default from HERO_CONFIG_PATH)")
	return cmd
}

func replayFile(cmd *cobra.Command, path, snapshot, rulesPath string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var exp exportFile
	if err := json.Unmarshal(b, &exp); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	rules, err := config.LoadRules(rulesPath)
	if err != nil {
		return err
	}
	rules.Seed = exp.Seed
	snap, err := stats.LoadSnapshot(snapshot)
	if err != nil {
		return err
	}
	setup, err := stats.BuildSetup(cmd.Context(), stats.NewSnapshotProvider(snap), exp.setupRequest())
	if err != nil {
		return err
	}

	s, err := engine.Replay(setup, rules, exp.Records)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := prompt.RenderTranscript(out, s.Transcript); err != nil {
		return err
	}
	fmt.Fprintf(out, "Replayed %d decisions cleanly\n", len(s.Transcript))
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived drafts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok, err := a.archive()
			if err != nil {
				return err
			}
			if !ok {
				return errNoArchive
			}
			drafts, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return renderDrafts(cmd.OutOrStdout(), drafts)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of drafts to show")
	return cmd
}

func renderDrafts(w io.Writer, drafts []store.Draft) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCode\tMap\tTeams\tStatus\tCreated")
	for _, d := range drafts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s vs %s\t%s\t%s\n",
			d.ID, d.Code, d.Map, d.FirstTeam, d.SecondTeam, d.Status, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|CODE",
		Short: "Print the transcript of an archived draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok, err := a.archive()
			if err != nil {
				return err
			}
			if !ok {
				return errNoArchive
			}
			var d *store.Draft
			if id, perr := uuid.Parse(args[0]); perr == nil {
				d, err = s.Get(cmd.Context(), id)
			} else {
				d, err = s.GetByCode(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s on %s: %s vs %s (%s)\n", d.Code, d.Map, d.FirstTeam, d.SecondTeam, d.Status)
			if d.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", d.Error)
			}
			return prompt.RenderTranscript(out, d.Records)
		},
	}
}
