package domain

import (
	"math"
	"strings"
)

// ResultRecord - один фильм в выдаче
type ResultRecord struct {
	// Title хранится как прислал бэкенд: это ключ для previous_titles
	Title       string
	Description string
	// Confidence в [0,1], nil если бэкенд не прислал
	Confidence *float64
	Enrichment *Enrichment
}

// Enrichment - метаданные с сайта рецензий. Пустая строка = нет значения.
type Enrichment struct {
	ExternalLink string
	PosterURL    string
	Score        string
	ReleaseYear  string
	Cast         string
}

type SearchResponse struct {
	Results         []ResultRecord
	QueryUnderstood bool
	TotalResults    int
	BadQuery        bool
}

// ConfidencePercent возвращает round(confidence*100).
func (r ResultRecord) ConfidencePercent() (int, bool) {
	if r.Confidence == nil {
		return 0, false
	}
	return int(math.Round(*r.Confidence * 100)), true
}

// DisplayTitle - название для показа, без пробелов по краям.
func (r ResultRecord) DisplayTitle() string {
	return strings.TrimSpace(r.Title)
}

func (r ResultRecord) PosterURL() string {
	if r.Enrichment == nil {
		return ""
	}
	return r.Enrichment.PosterURL
}

func (r ResultRecord) ExternalLink() string {
	if r.Enrichment == nil {
		return ""
	}
	return r.Enrichment.ExternalLink
}

// CastMembers режет строку актеров по запятым и выкидывает пустые куски.
func (e *Enrichment) CastMembers() []string {
	if e == nil || strings.TrimSpace(e.Cast) == "" {
		return nil
	}
	parts := strings.Split(e.Cast, ",")
	members := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			members = append(members, p)
		}
	}
	return members
}

// Titles - ключи дедупликации для запроса "еще".
func Titles(results []ResultRecord) []string {
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Title
	}
	return titles
}
