package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/config"
	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/prompt"
	"github.com/DoyleJ11/hots-draft-backend/internal/stats"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

type runOptions struct {
	Map           string
	Mode          string
	FirstName     string
	FirstPlayers  []string
	SecondName    string
	SecondPlayers []string
	// Manual is "first", "second", "both" or "none".
	Manual   string
	Seed     uint64
	SeedSet  bool
	Out      string
	Snapshot string
	Rules    string
}

// exportFile is what run --out writes and replay reads.
type exportFile struct {
	Map     string                  `json:"map"`
	Mode    string                  `json:"mode"`
	Seed    uint64                  `json:"seed"`
	First   exportTeam              `json:"first"`
	Second  exportTeam              `json:"second"`
	Records []engine.DecisionRecord `json:"records"`
}

type exportTeam struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

func (e exportFile) setupRequest() stats.SetupRequest {
	return stats.SetupRequest{
		Map:    e.Map,
		Mode:   e.Mode,
		First:  stats.TeamRequest{Name: e.First.Name, Players: e.First.Players},
		Second: stats.TeamRequest{Name: e.Second.Name, Players: e.Second.Players},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one draft, prompting for the manual team's slots",
		Example: `  draft run --map "Cursed Hollow" \
    --first Fowl --first-players Alfie#1948,Bee#2,Cee#3,Dee#4,Eve#5 \
    --second Bell --second-players Silverbell#11333,F#6,G#7,H#8,I#9 --manual first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.SeedSet = cmd.Flags().Changed("seed")
			if o.Mode == "" {
				o.Mode = a.cfg.GameMode
			}
			if o.Snapshot == "" {
				o.Snapshot = a.cfg.StatsSnapshotPath
			}
			if o.Rules == "" {
				o.Rules = a.cfg.HeroConfigPath
			}
			if !o.SeedSet {
				o.Seed = a.cfg.Seed
			}
			archive, _, err := a.archive()
			if err != nil {
				return err
			}
			return runDraft(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger, archive)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.Map, "map", "", "battleground name")
	f.StringVar(&o.Mode, "mode", "", "game mode (default from GAME_MODE)")
	f.StringVar(&o.FirstName, "first", "", "name of the team with first pick")
	f.StringSliceVar(&o.FirstPlayers, "first-players", nil, "five battle tags, comma separated")
	f.StringVar(&o.SecondName, "second", "", "name of the other team")
	f.StringSliceVar(&o.SecondPlayers, "second-players", nil, "five battle tags, comma separated")
	f.StringVar(&o.Manual, "manual", "first", "which team is prompted: first, second, both or none")
	f.Uint64Var(&o.Seed, "seed", 1, "seed for random fallback picks")
	f.StringVar(&o.Out, "out", "", "write the draft as JSON for later replay")
	f.StringVar(&o.Snapshot, "snapshot", "", "stats snapshot (default from STATS_SNAPSHOT_PATH)")
	f.StringVar(&o.Rules, "rules", "", "rules TOML (default from HERO_CONFIG_PATH)")
	for _, name := range []string{"map", "first", "first-players", "second", "second-players"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func manualSides(s string) ([]engine.Side, error) {
	switch strings.ToLower(s) {
	case "first":
		return []engine.Side{engine.SideFirst}, nil
	case "second":
		return []engine.Side{engine.SideSecond}, nil
	case "both":
		return []engine.Side{engine.SideFirst, engine.SideSecond}, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("--manual must be first, second, both or none, got %q", s)
}

func runDraft(ctx context.Context, o runOptions, in io.Reader, out io.Writer, logger *zap.Logger, archive store.Store) error {
	manual, err := manualSides(o.Manual)
	if err != nil {
		return err
	}
	rules, err := config.LoadRules(o.Rules)
	if err != nil {
		return err
	}
	rules.Seed = o.Seed

	snap, err := stats.LoadSnapshot(o.Snapshot)
	if err != nil {
		return err
	}
	exp := exportFile{
		Map:    o.Map,
		Mode:   o.Mode,
		Seed:   o.Seed,
		First:  exportTeam{Name: o.FirstName, Players: o.FirstPlayers},
		Second: exportTeam{Name: o.SecondName, Players: o.SecondPlayers},
	}
	setup, err := stats.BuildSetup(ctx, stats.NewSnapshotProvider(snap), exp.setupRequest())
	if err != nil {
		return err
	}
	state, err := engine.NewState(setup, rules)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if len(manual) > 0 {
		d := prompt.NewTerminalDecider(in, out, func() *prompt.HeroBoard { return prompt.BoardFromState(state) })
		for _, side := range manual {
			opts = append(opts, engine.WithDecider(side, d))
		}
	}

	var draft *store.Draft
	if archive != nil {
		draft = store.NewDraft("CLI", state)
	}

	res, runErr := engine.New(state, opts...).Run(ctx)

	fmt.Fprintln(out)
	color.New(color.Bold).Fprintln(out, "Draft log")
	if err := prompt.RenderTranscript(out, state.Transcript); err != nil {
		return err
	}

	if draft != nil {
		draft.Finish(state.Transcript, runErr)
		if err := archive.Save(context.WithoutCancel(ctx), draft); err != nil {
			logger.Error("archive draft", zap.Error(err))
		} else {
			fmt.Fprintf(out, "Archived as %s\n", draft.ID)
		}
	}

	if runErr != nil {
		var nc *engine.NoCandidateError
		if errors.As(runErr, &nc) {
			color.New(color.FgRed).Fprintln(out, nc.Error())
		}
		return runErr
	}

	for team, missing := range res.Shortfalls {
		color.New(color.FgYellow).Fprintf(out, "%s is missing required roles: %v\n", team, missing)
	}

	if o.Out != "" {
		exp.Records = res.Transcript
		b, err := json.MarshalIndent(exp, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.Out, b, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", o.Out)
	}
	return nil
}
