package discord

import (
	"fmt"
	"strings"

	"github.com/fadedpez/cccounter/internal/types"
	"github.com/fadedpez/cccounter/pkg/detection"
	"github.com/fadedpez/cccounter/pkg/entities"
	"github.com/fadedpez/cccounter/pkg/scoring"
	"github.com/fadedpez/cccounter/pkg/services/session"
	"github.com/fadedpez/cccounter/pkg/services/statistics"
)

// maxHistoryRows keeps /history under Discord's message length limit
const maxHistoryRows = 40

func codeBlock(s string) string {
	return "```\n" + s + "\n```"
}

func formatRoundOutcome(o *session.RoundOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎴 **Round %d**: %s %d, %s %d\n",
		o.Result.RoundNumber,
		o.Game.Team1Name, o.Result.Team1Score,
		o.Game.Team2Name, o.Result.Team2Score)
	sb.WriteString(codeBlock(scoring.FormatReport(o.Breakdown, o.Result)))
	if !o.Persisted {
		fmt.Fprintf(&sb, "\n💾 This round is counted but could not be saved (%d rounds waiting). Saving is retried with the next round.", o.Unsaved)
	}
	return sb.String()
}

func formatPreview(b *scoring.Breakdown, round *entities.RoundData) string {
	var sb strings.Builder
	sb.WriteString("👀 **Preview** (not recorded)\n")
	sb.WriteString(codeBlock(scoring.FormatReport(b, nil)))

	if missing := scoring.MissingSpecialCards(round); len(missing) > 0 && len(round.DoubledToOpponent) == 0 {
		codes := make([]string, 0, len(missing))
		for _, c := range missing {
			codes = append(codes, c.Code())
		}
		fmt.Fprintf(&sb, "\nCards you could claim as bonus: %s", strings.Join(codes, " "))
	}
	return sb.String()
}

func formatHistory(view *session.GameView, summary *statistics.GameSummary) string {
	game, snap := view.Game, view.Ledger

	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 **%s** vs **%s**\n", game.Team1Name, game.Team2Name)

	if len(snap.History) == 0 {
		sb.WriteString("No rounds played yet. Record one with /round.")
		return sb.String()
	}

	w1, w2 := max(len(game.Team1Name), 6), max(len(game.Team2Name), 6)
	var table strings.Builder
	fmt.Fprintf(&table, "%-5s  %*s  %*s\n", "Round", w1, game.Team1Name, w2, game.Team2Name)

	rows := snap.History
	if skipped := len(rows) - maxHistoryRows; skipped > 0 {
		fmt.Fprintf(&table, "(%d earlier rounds)\n", skipped)
		rows = rows[skipped:]
	}
	for _, r := range rows {
		fmt.Fprintf(&table, "%5d  %*d  %*d\n", r.RoundNumber, w1, r.Team1Score, w2, r.Team2Score)
	}
	fmt.Fprintf(&table, "%-5s  %*d  %*d", "Total", w1, snap.Team1Total, w2, snap.Team2Total)
	sb.WriteString(codeBlock(table.String()))

	actual := snap.Team1Total + snap.Team2Total
	if actual == snap.ExpectedTotal {
		fmt.Fprintf(&sb, "\n✅ Expected total %d matches", snap.ExpectedTotal)
	} else {
		fmt.Fprintf(&sb, "\n⚠️ Expected total %d, actual %d", snap.ExpectedTotal, actual)
	}

	if summary != nil && summary.Rounds > 0 {
		if summary.Leader == "" {
			sb.WriteString("\n🤝 Dead even")
		} else {
			fmt.Fprintf(&sb, "\n🏆 %s leads by %d", summary.Leader, summary.Margin)
		}
		fmt.Fprintf(&sb, "\n⭐ Best rounds: %s %d (round %d), %s %d (round %d)",
			summary.Team1.Name, summary.Team1.BestScore, summary.Team1.BestRound,
			summary.Team2.Name, summary.Team2.BestScore, summary.Team2.BestRound)
	}
	return sb.String()
}

func formatFacts(facts *detection.RoundFacts) string {
	var sb strings.Builder
	sb.WriteString("📷 **Detected cards**\n")

	if facts.TotalCards == 0 {
		sb.WriteString("No cards recognized. Try a sharper photo with the cards spread out.")
		return sb.String()
	}

	queens := make([]string, 0, len(facts.QueenSuits))
	for _, suit := range facts.QueenSuits {
		queens = append(queens, "Q"+suit.Symbol())
	}
	king := "no"
	if facts.KingOfHearts {
		king = "yes"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Cards:    %d (%d tricks)\n", facts.TotalCards, facts.Tricks())
	fmt.Fprintf(&body, "Diamonds: %d\n", facts.Diamonds)
	fmt.Fprintf(&body, "Queens:   %s\n", joinOrNone(queens))
	fmt.Fprintf(&body, "King ♥:   %s\n", king)
	fmt.Fprintf(&body, "Seen:     %s", strings.Join(facts.Cards, " "))
	sb.WriteString(codeBlock(body.String()))

	if facts.Ignored > 0 {
		fmt.Fprintf(&sb, "\n%d detections skipped as duplicates or low confidence.", facts.Ignored)
	}
	if err := facts.ToRoundData().Validate(); err != nil {
		var gameErr *types.GameError
		reason := err.Error()
		if types.As(err, &gameErr) {
			reason = gameErr.Message
		}
		fmt.Fprintf(&sb, "\n⚠️ These counts cannot come from one round (%s). Some cards were misread, retake the photo or enter the round by hand.", reason)
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nCheck the counts, add any doubled cards and record with:\n`%s`", suggestRoundCommand(facts))
	return sb.String()
}

// suggestRoundCommand renders the /round invocation matching the facts
func suggestRoundCommand(facts *detection.RoundFacts) string {
	round := facts.ToRoundData()
	parts := []string{
		"/" + cmdRound,
		fmt.Sprintf("%s:%d", optCards, round.TotalCardsCaptured),
		fmt.Sprintf("%s:%d", optDiamonds, round.DiamondCount),
	}
	if len(facts.QueenSuits) > 0 {
		suits := make([]string, 0, len(facts.QueenSuits))
		for _, suit := range facts.QueenSuits {
			suits = append(suits, suit.Code())
		}
		parts = append(parts, fmt.Sprintf("%s:%s", optQueens, strings.Join(suits, " ")))
	}
	if round.KingOfHearts != nil {
		parts = append(parts, optKing+":true")
	}
	return strings.Join(parts, " ")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
