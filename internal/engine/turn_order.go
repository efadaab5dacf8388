package engine

// DraftOrder is the fixed ban/pick sequence of a ranked draft.
var DraftOrder = []Slot{
	// Ban Phase 1
	{Kind: KindBan, Number: 1},
	{Kind: KindBan, Number: 2},
	{Kind: KindBan, Number: 3},
	{Kind: KindBan, Number: 4},
	// Pick Phase 1
	{Kind: KindPick, Number: 5},
	{Kind: KindPick, Number: 6},
	{Kind: KindPick, Number: 7},
	{Kind: KindPick, Number: 8},
	{Kind: KindPick, Number: 9},
	// Ban Phase 2
	{Kind: KindBan, Number: 10},
	{Kind: KindBan, Number: 11},
	// Pick Phase 2
	{Kind: KindPick, Number: 12},
	{Kind: KindPick, Number: 13},
	{Kind: KindPick, Number: 14},
	{Kind: KindPick, Number: 15},
	{Kind: KindPick, Number: 16},
}

// FirstPickSlots are the slots acted on by the team that won first pick.
var FirstPickSlots = map[int]bool{1: true, 3: true, 5: true, 8: true, 9: true, 10: true, 14: true, 15: true}

func SideFor(number int) Side {
	if FirstPickSlots[number] {
		return SideFirst
	}
	return SideSecond
}

func slotIndex(number int) int {
	for i, s := range DraftOrder {
		if s.Number == number {
			return i
		}
	}
	return -1
}

// picksPerSide counts the pick slots each side owns; it is the roster size.
func picksPerSide() int {
	n := 0
	for _, s := range DraftOrder {
		if s.Kind == KindPick && SideFor(s.Number) == SideFirst {
			n++
		}
	}
	return n
}

// pairable reports whether a pick on this slot can carry a second pick
// for the same team on the following slot.
func pairable(number int) bool {
	i := slotIndex(number)
	if i < 0 || i+1 >= len(DraftOrder) {
		return false
	}
	cur, next := DraftOrder[i], DraftOrder[i+1]
	return cur.Kind == KindPick && next.Kind == KindPick && SideFor(cur.Number) == SideFor(next.Number)
}
