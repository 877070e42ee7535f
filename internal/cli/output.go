package cli

import (
	"fmt"
	"io"
	"time"

	"medrag/internal/models"

	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

func strategyLabel(env models.AnswerEnvelope) string {
	switch env.Strategy {
	case models.StrategyError, models.StrategyNoDatabase:
		return bad(env.Strategy)
	case models.StrategyNoContent:
		return warn(env.Strategy)
	default:
		return good(env.Strategy)
	}
}

func renderAnswer(w io.Writer, env models.AnswerEnvelope) {
	fmt.Fprintf(w, "%s %s\n", heading("Question:"), env.Query)
	cached := "fresh"
	if env.Cached {
		cached = "cached"
	}
	fmt.Fprintf(w, "%s %s  %s %s  %s\n",
		faint("strategy"), strategyLabel(env),
		faint("llm"), env.LLMEnhancement,
		faint(cached),
	)
	fmt.Fprintln(w)
	fmt.Fprintln(w, env.GeneratedResponse)

	if len(env.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("Sources:"))
		for i, s := range env.Sources {
			fmt.Fprintf(w, "  [%d] %s - %s %s\n", i+1, s.Title, s.Section, good(fmt.Sprintf("(%d)", s.Score)))
			if s.URL != "" {
				fmt.Fprintf(w, "      %s\n", faint(s.URL))
			}
		}
	}
	d := env.DebugInfo
	fmt.Fprintf(w, "\n%s %d items scanned, %d relevant, %.2fs",
		faint("search:"), d.TotalItemsProcessed, d.RelevantResultsFound, d.SearchTime)
	if d.CacheStatus != "" {
		fmt.Fprintf(w, ", cache %s", d.CacheStatus)
	}
	if d.Error != "" {
		fmt.Fprintf(w, ", %s", bad(d.Error))
	}
	fmt.Fprintln(w)
}

func renderCacheEntry(w io.Writer, e models.CacheEntry, now time.Time) {
	fmt.Fprintf(w, "%s %s\n", heading("Query:"), e.Query)
	fmt.Fprintf(w, "  hash       %s\n", e.QueryHash)
	fmt.Fprintf(w, "  stored     %s\n", time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
	remaining := time.Unix(e.ExpiresAt, 0).Sub(now).Round(time.Second)
	fmt.Fprintf(w, "  expires in %s\n", remaining)
	fmt.Fprintf(w, "  strategy   %s\n", strategyLabel(e.Response))
	fmt.Fprintf(w, "  sources    %d\n", len(e.Response.Sources))
}
