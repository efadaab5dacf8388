package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

var errUnrecognized = errors.New("not a suggestion number, hero code or hero name")

// Resolve turns one line of operator input into a Choice: Enter takes the
// top suggestion, a number picks that suggestion, anything else must be a
// board code or a legal hero name.
func Resolve(input string, p engine.Prompt, board *HeroBoard) (engine.Choice, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return engine.Choice{}, nil
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(p.Suggestions) {
			return engine.Choice{}, fmt.Errorf("pick a suggestion between 1 and %d", len(p.Suggestions))
		}
		return engine.Choice{Index: n}, nil
	}

	if hero, ok := board.Lookup(input); ok {
		for _, h := range p.Legal {
			if h == hero {
				return engine.Choice{Hero: hero}, nil
			}
		}
		return engine.Choice{}, fmt.Errorf("%s is not available", hero)
	}

	want := Normalize(input)
	for _, h := range p.Legal {
		if Normalize(h) == want {
			return engine.Choice{Hero: h}, nil
		}
	}
	return engine.Choice{}, fmt.Errorf("%q: %w", input, errUnrecognized)
}

// TerminalDecider asks an operator on a line-based terminal.
type TerminalDecider struct {
	out   io.Writer
	lines chan string
	board func() *HeroBoard
}

// NewTerminalDecider reads answers from in. board, when not nil, supplies
// the current hero board for code lookups and is printed before each prompt.
func NewTerminalDecider(in io.Reader, out io.Writer, board func() *HeroBoard) *TerminalDecider {
	d := &TerminalDecider{out: out, lines: make(chan string), board: board}
	go func() {
		defer close(d.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			d.lines <- sc.Text()
		}
	}()
	return d
}

func (d *TerminalDecider) Decide(ctx context.Context, p engine.Prompt) (engine.Choice, error) {
	var board *HeroBoard
	if d.board != nil {
		board = d.board()
		fmt.Fprintln(d.out)
		board.Render(d.out)
	}
	d.printPrompt(p)

	for {
		fmt.Fprint(d.out, "➤ Select hero (or press Enter for default): ")
		line, err := d.readLine(ctx)
		if err != nil {
			return engine.Choice{}, err
		}
		c, err := Resolve(line, p, board)
		if err != nil {
			color.New(color.FgRed).Fprintf(d.out, "Invalid choice: %v\n", err)
			continue
		}
		if c.Hero != "" && p.Kind == engine.KindPick && len(p.Players) > 1 {
			if c.Player, err = d.choosePlayer(ctx, p.Players); err != nil {
				return engine.Choice{}, err
			}
		}
		return c, nil
	}
}

func (d *TerminalDecider) printPrompt(p engine.Prompt) {
	fmt.Fprintln(d.out)
	color.New(color.Bold).Fprintf(d.out, "Slot %d: %s %s (%s phase)\n", p.Slot, p.Team, p.Kind, p.Phase)
	if p.Retry != "" {
		color.New(color.FgYellow).Fprintf(d.out, "Previous choice refused: %s\n", p.Retry)
	}
	if len(p.Suggestions) == 0 {
		fmt.Fprintln(d.out, "No suggestions available")
	}
	for i, s := range p.Suggestions {
		who := s.Player
		if s.Partner != "" {
			who = fmt.Sprintf("%s, with %s for %s", s.Player, s.Partner, s.PartnerPlayer)
		}
		fmt.Fprintf(d.out, "%d. %s (%s) %.2f\n   %s\n", i+1, s.Hero, who, s.Score, s.Reason)
	}
}

func (d *TerminalDecider) choosePlayer(ctx context.Context, players []string) (string, error) {
	fmt.Fprintln(d.out, "Assign to player:")
	for i, p := range players {
		fmt.Fprintf(d.out, "%d: %s\n", i+1, p)
	}
	for {
		fmt.Fprint(d.out, "Enter the number of the player (or press Enter for the best fit): ")
		line, err := d.readLine(ctx)
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return "", nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(players) {
			return players[n-1], nil
		}
		color.New(color.FgRed).Fprintln(d.out, "Invalid input. Please enter a number from the list.")
	}
}

func (d *TerminalDecider) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-d.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// RenderTranscript prints records as an aligned table.
func RenderTranscript(w io.Writer, records []engine.DecisionRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Order\tType\tTeam\tPlayer\tHero\tScore\tReason")
	for _, r := range records {
		fmt.Fprintln(tw, r.String())
	}
	return tw.Flush()
}
