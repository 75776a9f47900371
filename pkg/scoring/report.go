package scoring

import (
	"fmt"
	"strings"

	"github.com/fadedpez/cccounter/pkg/entities"
)

const reportWidth = 40

// FormatReport renders a plain-text round report. result may be nil when the
// round was only previewed.
func FormatReport(b *Breakdown, result *entities.RoundResult) string {
	var sb strings.Builder
	rule := strings.Repeat("═", reportWidth)

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line(rule)
	line("📊 Round score report")
	line(rule)
	line("")
	line("🃏 Tricks: %d", b.Tricks.Count)
	line("   Points: %d", b.Tricks.Points)
	if b.LeftoverCards > 0 {
		line("   (%d leftover cards ignored)", b.LeftoverCards)
	}
	line("")
	line("♦️ Diamonds: %d", b.Diamonds.Count)
	line("   Points: %d", b.Diamonds.Points)
	line("")
	line("👸 Queens: %s", joinOrNone(b.Queens.Cards))
	line("   Points: %d", b.Queens.Points)
	line("")

	if b.KingOfHearts.Exists {
		doubled := ""
		if b.KingOfHearts.Doubled {
			doubled = " (doubled)"
		}
		line("👑 King of hearts: captured%s", doubled)
		line("   Points: %d", b.KingOfHearts.Points)
		line("")
	}

	if b.DoubledBonus.Points > 0 {
		line("✨ Doubled onto opponent:")
		line("   Cards: %s", strings.Join(b.DoubledBonus.Cards, ", "))
		line("   Points: +%d", b.DoubledBonus.Points)
		line("")
	}

	line(strings.Repeat("─", reportWidth))
	line("📌 Your team: %d", b.Total)

	if result != nil {
		line("📌 Opponent: %d", result.Team2Score)
		line("   (sum = %d)", RoundTotal)
		line("")
		line(rule)
		line("🏆 Round: %d", result.RoundNumber)
		line("📊 Your total: %d", result.Team1Total)
		line("📊 Opponent total: %d", result.Team2Total)
		line("📊 Expected total: %d", result.ExpectedTotal)
		if !result.IsValid {
			line("⚠️ Totals drifted: actual %d", result.ActualTotal)
		}
	}

	sb.WriteString(rule)
	return sb.String()
}

func joinOrNone(cards []string) string {
	if len(cards) == 0 {
		return "none"
	}
	return strings.Join(cards, ", ")
}
