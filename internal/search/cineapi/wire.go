package cineapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kitbuilder587/cine-bot/internal/domain"
)

// формат ответа бэкенда; все расхождения схемы гасим здесь,
// дальше по коду ходит только domain.SearchResponse

type moreRequest struct {
	Query          string   `json:"query"`
	PreviousTitles []string `json:"previous_titles"`
}

type wireResponse struct {
	Results         []wireResult `json:"results"`
	QueryUnderstood bool         `json:"query_understood"`
	TotalResults    *int         `json:"total_results"`
	BadQuery        *bool        `json:"bad_query"`
}

type wireResult struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Confidence  *float64    `json:"confidence"`
	RTData      *wireRTData `json:"rt_data"`
}

type wireRTData struct {
	RTLink      flexString `json:"rt_link"`
	PosterURL   flexString `json:"poster_url"`
	TomatoScore flexString `json:"tomato_score"`
	ReleaseYear flexString `json:"release_year"`
	Cast        flexString `json:"cast"`
}

// flexString принимает строку, число, массив строк или null.
// Бэкенд присылает tomato_score и release_year то строкой, то числом.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
	case '[':
		var parts []string
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		*f = flexString(strings.Join(parts, ", "))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unexpected value %s: %w", b, err)
		}
		*f = flexString(n.String())
	}
	return nil
}

func decodeResponse(body []byte) (*domain.SearchResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected json object")
	}

	var wr wireResponse
	if err := json.Unmarshal(trimmed, &wr); err != nil {
		return nil, err
	}
	return wr.toDomain(), nil
}

func (w *wireResponse) toDomain() *domain.SearchResponse {
	results := make([]domain.ResultRecord, 0, len(w.Results))
	for _, r := range w.Results {
		if strings.TrimSpace(r.Title) == "" {
			// без названия нечего дедуплицировать
			continue
		}
		results = append(results, domain.ResultRecord{
			Title:       r.Title,
			Description: strings.TrimSpace(r.Description),
			Confidence:  clampConfidence(r.Confidence),
			Enrichment:  r.RTData.toDomain(),
		})
	}

	total := len(results)
	if w.TotalResults != nil {
		total = *w.TotalResults
	}

	return &domain.SearchResponse{
		Results:         results,
		QueryUnderstood: w.QueryUnderstood,
		TotalResults:    total,
		BadQuery:        w.BadQuery != nil && *w.BadQuery,
	}
}

func (d *wireRTData) toDomain() *domain.Enrichment {
	if d == nil {
		return nil
	}
	e := &domain.Enrichment{
		ExternalLink: string(d.RTLink),
		PosterURL:    string(d.PosterURL),
		Score:        string(d.TomatoScore),
		ReleaseYear:  string(d.ReleaseYear),
		Cast:         string(d.Cast),
	}
	if *e == (domain.Enrichment{}) {
		return nil
	}
	return e
}

func clampConfidence(c *float64) *float64 {
	if c == nil {
		return nil
	}
	v := *c
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}
