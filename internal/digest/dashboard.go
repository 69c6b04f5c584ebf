package digest

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/freshapply/internal/engine"
	"github.com/jonathan/freshapply/internal/location"
	"github.com/jonathan/freshapply/internal/scoring"
)

//go:embed dashboard.html.tmpl
var dashboardSource string

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"terms": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(dashboardSource))

// csvHeader names the export columns, in order.
var csvHeader = []string{
	"Title", "Company", "Location", "Work Type", "Location Flag", "Salary",
	"Tier", "Freshness", "Fit", "Combined", "URL", "First Seen",
}

// localFlag labels postings that need no move.
const localFlag = "Local"

var tierClass = map[scoring.Tier]string{
	scoring.ApplyToday:    "today",
	scoring.ApplyThisWeek: "week",
	scoring.WatchList:     "watch",
}

type tierCount struct {
	Tier  scoring.Tier
	Class string
	Count string
}

type dashboardCard struct {
	engine.Evaluation
	CompanyName string
	Flag        string
	TierClass   string
	Seen        string
	CSV         string
}

type dashboardPage struct {
	Date      string
	Generated string
	Total     string
	Counts    []tierCount
	Tiers     []scoring.Tier
	WorkTypes []location.WorkType
	Flags     []string
	CSVHeader string
	Cards     []dashboardCard
}

// DashboardFileName returns the dashboard file name for the generation date.
func (d Digest) DashboardFileName() string {
	return fmt.Sprintf("dashboard-%s.html", d.Generated.Format(time.DateOnly))
}

// RenderHTML writes the dashboard: one card per posting with its fit breakdown
// and suggestions, tier/work type/flag filters and a CSV export of the cards
// left visible.
func (d Digest) RenderHTML(w io.Writer) error {
	header, err := csvLine(csvHeader)
	if err != nil {
		return err
	}
	page := dashboardPage{
		Date:      d.Generated.Format(time.DateOnly),
		Generated: d.Generated.Format("2006-01-02 15:04 UTC"),
		Total:     humanize.Comma(int64(len(d.Evaluations))),
		Tiers:     scoring.Tiers,
		WorkTypes: []location.WorkType{location.Remote, location.Hybrid, location.OnSite},
		Flags:     []string{localFlag, string(location.FlagRelocation), string(location.FlagInternational)},
		CSVHeader: header,
	}

	counts := d.Counts()
	for _, tier := range scoring.Tiers {
		if n := counts[tier]; n > 0 {
			page.Counts = append(page.Counts, tierCount{Tier: tier, Class: tierClass[tier], Count: humanize.Comma(int64(n))})
		}
	}

	for _, e := range d.Evaluations {
		row, err := csvLine(d.csvRecord(e))
		if err != nil {
			return err
		}
		page.Cards = append(page.Cards, dashboardCard{
			Evaluation:  e,
			CompanyName: d.DisplayName(e.Company),
			Flag:        flagLabel(e.LocationFlag),
			TierClass:   tierClass[e.Tier],
			Seen:        d.seen(e.FirstSeenAt),
			CSV:         row,
		})
	}

	if err := dashboardTmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// WriteCSV writes a header row and one row per evaluation, in digest order.
func (d Digest) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range d.Evaluations {
		if err := cw.Write(d.csvRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (d Digest) csvRecord(e engine.Evaluation) []string {
	return []string{
		e.Title,
		d.DisplayName(e.Company),
		e.Location,
		string(e.WorkType),
		flagLabel(e.LocationFlag),
		e.ExtractedSalary,
		string(e.Tier),
		strconv.Itoa(e.FreshnessScore),
		strconv.Itoa(e.FitScore),
		strconv.FormatFloat(e.Combined, 'f', 1, 64),
		e.URL,
		datePart(e.FirstSeenAt),
	}
}

// seen renders the first-seen time relative to generation, or the raw date
// when it does not parse.
func (d Digest) seen(firstSeenAt string) string {
	t, ok := scoring.ParseTimestamp(firstSeenAt)
	if !ok {
		return datePart(firstSeenAt)
	}
	return humanize.RelTime(t, d.Generated, "ago", "from now")
}

func flagLabel(f location.Flag) string {
	if f == location.FlagNone {
		return localFlag
	}
	return string(f)
}

// csvLine encodes one record without its trailing newline.
func csvLine(record []string) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(record); err != nil {
		return "", err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
