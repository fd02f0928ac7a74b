package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kitbuilder587/cine-bot/internal/controller"
	"github.com/kitbuilder587/cine-bot/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	yearStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	criticsStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("32"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(0, 0, 1, 0)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const defaultWidth = 80

// Renderer печатает снимки контроллера в терминал.
type Renderer struct {
	w     io.Writer
	width int
}

func New(w io.Writer, width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{w: w, width: width}
}

// RenderCard - карточка фильма в рамке шириной width.
func RenderCard(r domain.ResultRecord, width int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(r.DisplayTitle()))
	if r.Enrichment != nil && r.Enrichment.ReleaseYear != "" {
		b.WriteString(" " + yearStyle.Render("("+r.Enrichment.ReleaseYear+")"))
	}

	if desc := strings.TrimSpace(r.Description); desc != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Width(inner).Render(desc))
	}

	if cast := r.Enrichment.CastMembers(); len(cast) > 0 {
		b.WriteString("\n\n" + lipgloss.NewStyle().Width(inner).Render("Cast: "+strings.Join(cast, ", ")))
	}

	var badges []string
	if r.Enrichment != nil && strings.TrimSpace(r.Enrichment.Score) != "" {
		badges = append(badges, criticsStyle.Render(fmt.Sprintf("🍅 Critics: %s/100", strings.TrimSpace(r.Enrichment.Score))))
	}
	if pct, ok := r.ConfidencePercent(); ok {
		badges = append(badges, matchStyle.Render(fmt.Sprintf("Match: %d%%", pct)))
	}
	if len(badges) > 0 {
		b.WriteString("\n\n" + strings.Join(badges, "   "))
	}

	if poster := r.PosterURL(); poster != "" {
		b.WriteString("\n" + metaStyle.Render("Poster: "+poster))
	} else {
		b.WriteString("\n" + noDataStyle.Render("No poster available"))
	}
	if link := r.ExternalLink(); link != "" {
		b.WriteString("\n" + urlStyle.Render(link))
	}

	return cardStyle.Render(b.String())
}

// RenderState рисует ошибку, заголовок и карточки. При onlyNew
// выводится только последняя порция.
func (r *Renderer) RenderState(s controller.State, onlyNew bool) error {
	_, err := io.WriteString(r.w, r.Format(s, onlyNew))
	return err
}

func (r *Renderer) Format(s controller.State, onlyNew bool) string {
	var b strings.Builder

	if s.HasError() {
		b.WriteString(errorStyle.Render(s.ErrorMessage))
		b.WriteString("\n")
		return b.String()
	}

	switch s.Phase {
	case controller.Searching:
		return metaStyle.Render("Searching...") + "\n"
	case controller.LoadingMore:
		return metaStyle.Render("Loading more...") + "\n"
	case controller.Idle:
		return ""
	}

	results := s.Results
	if onlyNew {
		results = s.NewResults()
	}
	if len(results) == 0 {
		return ""
	}

	header := fmt.Sprintf("%d movies for %q", len(s.Results), s.LastSubmittedQuery)
	if onlyNew && len(results) != len(s.Results) {
		header = fmt.Sprintf("%d more (%d total)", len(results), len(s.Results))
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, rec := range results {
		b.WriteString(RenderCard(rec, r.width))
		b.WriteString("\n")
	}
	return b.String()
}

type enrichmentView struct {
	ExternalLink string   `json:"external_link,omitempty"`
	PosterURL    string   `json:"poster_url,omitempty"`
	Score        string   `json:"score,omitempty"`
	ReleaseYear  string   `json:"release_year,omitempty"`
	Cast         []string `json:"cast,omitempty"`
}

type resultView struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Confidence  *float64        `json:"confidence,omitempty"`
	Enrichment  *enrichmentView `json:"enrichment,omitempty"`
}

type stateView struct {
	Query   string       `json:"query"`
	Phase   string       `json:"phase"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
	Results []resultView `json:"results"`
}

// WriteJSON пишет снимок для скриптов (cine search --output json).
func WriteJSON(w io.Writer, s controller.State) error {
	view := stateView{
		Query:   s.LastSubmittedQuery,
		Phase:   s.Phase.String(),
		Results: make([]resultView, 0, len(s.Results)),
	}
	if s.HasError() {
		view.Error = s.ErrorKind.String()
		view.Message = s.ErrorMessage
	}
	for _, r := range s.Results {
		rv := resultView{Title: r.Title, Description: r.Description, Confidence: r.Confidence}
		if e := r.Enrichment; e != nil {
			rv.Enrichment = &enrichmentView{
				ExternalLink: e.ExternalLink,
				PosterURL:    e.PosterURL,
				Score:        e.Score,
				ReleaseYear:  e.ReleaseYear,
				Cast:         e.CastMembers(),
			}
		}
		view.Results = append(view.Results, rv)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
