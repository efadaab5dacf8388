package prompt

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

type column struct {
	title  string
	prefix string
	roles  []engine.Role
}

var columns = []column{
	{"Tank", "T", []engine.Role{engine.RoleTank}},
	{"Healer", "H", []engine.Role{engine.RoleHealer}},
	{"Offlaner", "O", []engine.Role{engine.RoleOfflaner, engine.RoleBruiser}},
	{"Ranged Assassin", "R", []engine.Role{engine.RoleRangedAssassin}},
	{"Melee Assassin", "M", []engine.Role{engine.RoleMeleeAssassin}},
	{"Other", "X", nil},
}

const columnWidth = 25

type Entry struct {
	Code   string
	Hero   string
	Struck bool
}

// HeroBoard lists every draftable hero by role with a short code per entry
// (T1, H2, ...). A hero with several roles is listed under each of them.
type HeroBoard struct {
	Columns [][]Entry
	codes   map[string]string
}

// NewHeroBoard builds the board over heroes; gone marks banned or picked
// heroes, which stay listed but struck through.
func NewHeroBoard(heroes map[string]engine.Hero, gone func(string) bool) *HeroBoard {
	b := &HeroBoard{Columns: make([][]Entry, len(columns)), codes: map[string]string{}}

	names := make([]string, 0, len(heroes))
	for name := range heroes {
		names = append(names, name)
	}
	slices.Sort(names)

	other := len(columns) - 1
	for _, name := range names {
		placed := false
		for i, col := range columns[:other] {
			if slices.ContainsFunc(heroes[name].Roles, func(r engine.Role) bool { return slices.Contains(col.roles, r) }) {
				b.add(i, name, gone(name))
				placed = true
			}
		}
		if !placed {
			b.add(other, name, gone(name))
		}
	}
	return b
}

// BoardFromState shows every non-forbidden hero of s.
func BoardFromState(s *engine.State) *HeroBoard {
	heroes := map[string]engine.Hero{}
	for name, h := range s.Heroes {
		if !s.Forbidden[name] {
			heroes[name] = h
		}
	}
	return NewHeroBoard(heroes, func(name string) bool { return s.Banned[name] || s.Picked[name] })
}

func (b *HeroBoard) add(col int, hero string, struck bool) {
	code := fmt.Sprintf("%s%d", columns[col].prefix, len(b.Columns[col])+1)
	b.Columns[col] = append(b.Columns[col], Entry{Code: code, Hero: hero, Struck: struck})
	b.codes[strings.ToLower(code)] = hero
}

// Lookup resolves a code such as "r4", ignoring case.
func (b *HeroBoard) Lookup(code string) (string, bool) {
	if b == nil {
		return "", false
	}
	h, ok := b.codes[strings.ToLower(strings.TrimSpace(code))]
	return h, ok
}

func (b *HeroBoard) Render(w io.Writer) {
	var header strings.Builder
	for _, col := range columns {
		fmt.Fprintf(&header, "%-*s", columnWidth, col.title)
	}
	fmt.Fprintln(w, header.String())
	fmt.Fprintln(w, strings.Repeat("=", header.Len()))

	rows := 0
	for _, c := range b.Columns {
		rows = max(rows, len(c))
	}
	for i := 0; i < rows; i++ {
		var line strings.Builder
		for _, c := range b.Columns {
			cell := ""
			if i < len(c) {
				name := c[i].Hero
				if c[i].Struck {
					name = "~" + name + "~"
				}
				cell = c[i].Code + ": " + name
			}
			fmt.Fprintf(&line, "%-*s", columnWidth, cell)
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
