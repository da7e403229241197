package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/staccato/internal/model"
	"github.com/verte-zerg/staccato/internal/store"
)

const terminalWidthBackup = 80

// Report contains precomputed data for stats rendering.
type Report struct {
	Summaries []model.SessionSummary
}

// BuildReport loads and prepares session history for rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	summaries, err := st.ListSummaries(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{Summaries: summaries}, nil
}

// Grade maps a hygiene score to its verdict label.
func Grade(score float64) string {
	switch {
	case score >= 80:
		return "EXCELLENT"
	case score >= 60:
		return "GOOD"
	case score >= 40:
		return "FAIR"
	default:
		return "POOR"
	}
}

// RenderReport writes the session history table, hygiene trend, and totals.
func RenderReport(w io.Writer, r Report) error {
	if len(r.Summaries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}

	headers := []string{"DATE", "DURATION", "KEYS", "HYGIENE", "GRADE", "ADHESION", "MINOR", "MODERATE", "SEVERE", "WORST PAIR"}
	rightAlign := map[int]bool{2: true, 3: true, 5: true, 6: true, 7: true, 8: true}
	rows := make([][]string, 0, len(r.Summaries))
	scores := make([]float64, 0, len(r.Summaries))
	totalKeys := 0
	scoreSum := 0.0
	for _, s := range r.Summaries {
		rows = append(rows, []string{
			formatDate(s.StartedAt),
			formatDuration(s.DurationSeconds),
			fmt.Sprintf("%d", s.TotalKeypresses),
			fmt.Sprintf("%.1f", s.HygieneScore),
			Grade(s.HygieneScore),
			fmt.Sprintf("%.1f%%", s.AdhesionRate),
			fmt.Sprintf("%d", s.MinorAdhesions),
			fmt.Sprintf("%d", s.ModerateAdhesions),
			fmt.Sprintf("%d", s.SevereAdhesions),
			s.WorstPair,
		})
		scores = append(scores, s.HygieneScore)
		totalKeys += s.TotalKeypresses
		scoreSum += s.HygieneScore
	}

	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(scores) > 1 {
		if _, err := fmt.Fprintf(w, "\nHygiene trend: [%s]\n", Sparkline(scores, 0, 100, trendWidth())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d sessions, %d keypresses, average hygiene %.1f (%s)\n",
		len(r.Summaries), totalKeys, scoreSum/float64(len(r.Summaries)), Grade(scoreSum/float64(len(r.Summaries))))
	return err
}

func formatDate(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}

func trendWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = terminalWidthBackup
	}
	// Leave room for the label and brackets.
	width -= 20
	if width < 10 {
		width = 10
	}
	return width
}
