package gamification

import "math"

// Progress is a user's progression state: Level >= 1, and XP is the partial
// progress toward the next level, kept in [0, XPRequiredForLevel(Level)).
type Progress struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// XPRequiredForLevel returns the XP needed to advance past the given level,
// trunc(100 * level^1.5). The curve is strictly increasing for level >= 1, so
// level-up resolution always terminates. Levels below 1 are clamped to 1.
func XPRequiredForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(100 * math.Pow(float64(level), 1.5))
}

// Award adds amount XP and resolves any level-ups, returning how many levels
// were gained. A single large award can cross several boundaries; the loop
// subtracts each level's requirement in turn so none is skipped. Negative
// amounts are ignored outright: a malformed upstream score must never drain
// progress.
func (p *Progress) Award(amount int) int {
	if amount < 0 {
		return 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.XP += amount
	gained := 0
	for p.XP >= XPRequiredForLevel(p.Level) {
		p.XP -= XPRequiredForLevel(p.Level)
		p.Level++
		gained++
	}
	return gained
}

// Percentage reports progress toward the next level in [0, 100]. A zero
// requirement cannot happen with the curve above, but returning 100 keeps a
// corrupted row from dividing by zero.
func (p Progress) Percentage() float64 {
	req := XPRequiredForLevel(p.Level)
	if req == 0 {
		return 100
	}
	pct := float64(p.XP) / float64(req) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
