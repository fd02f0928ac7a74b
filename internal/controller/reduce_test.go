package controller

import (
	"errors"
	"testing"

	"github.com/kitbuilder587/cine-bot/internal/domain"
	"github.com/kitbuilder587/cine-bot/internal/search/mock"
)

func readyState(titles ...string) State {
	return State{
		Query:              "inception",
		LastSubmittedQuery: "inception",
		Results:            mock.Movies(titles...),
		Phase:              Ready,
		SearchID:           "s1",
	}
}

func TestSubmitted_ClearsResultsAndError(t *testing.T) {
	prev := readyState("M1", "M2")
	prev.ErrorKind = domain.ErrorNoMoreResults
	prev.ErrorMessage = domain.MsgNoMoreResults

	got := submitted(prev, "  heist  ", "heist", "s2")

	if got.Phase != Searching {
		t.Errorf("Phase = %v, want searching", got.Phase)
	}
	if len(got.Results) != 0 || got.Results == nil {
		t.Errorf("Results = %v, want empty non-nil", got.Results)
	}
	if got.HasError() || got.ErrorKind != domain.ErrorNone {
		t.Errorf("error not cleared: %v %q", got.ErrorKind, got.ErrorMessage)
	}
	if got.Query != "  heist  " {
		t.Errorf("Query = %q, want raw input", got.Query)
	}
	if got.LastSubmittedQuery != "inception" {
		t.Errorf("LastSubmittedQuery changed before response: %q", got.LastSubmittedQuery)
	}
	if got.PendingQuery != "heist" {
		t.Errorf("PendingQuery = %q, want trimmed query", got.PendingQuery)
	}
	if got.SearchID != "s2" {
		t.Errorf("SearchID = %q", got.SearchID)
	}
	if len(prev.Results) != 2 {
		t.Error("submitted mutated its input")
	}
}

func TestInitialResolved(t *testing.T) {
	searching := submitted(State{LastSubmittedQuery: "old"}, "new", "new", "s")

	tests := []struct {
		name        string
		resp        *domain.SearchResponse
		err         error
		wantPhase   Phase
		wantKind    domain.ErrorKind
		wantMessage string
		wantResults int
		wantLast    string
	}{
		{"success", mock.Response(mock.Movies("A", "B", "C")...), nil, Ready, domain.ErrorNone, "", 3, "new"},
		{"bad query", mock.BadQuery(), nil, Failed, domain.ErrorInvalidQuery, "Requests must be for movies", 0, "old"},
		{"bad query wins over results", &domain.SearchResponse{Results: mock.Movies("A"), BadQuery: true}, nil, Failed, domain.ErrorInvalidQuery, "Requests must be for movies", 0, "old"},
		{"empty", mock.Response(), nil, Failed, domain.ErrorEmptyResult, "No movies found", 0, "old"},
		{"transport", nil, errors.New("dial tcp"), Failed, domain.ErrorTransportFailure, "Failed to fetch results. Please try again.", 0, "old"},
		{"nil response", nil, nil, Failed, domain.ErrorTransportFailure, "Failed to fetch results. Please try again.", 0, "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := initialResolved(searching, "new", tt.resp, tt.err)

			if got.Phase != tt.wantPhase {
				t.Errorf("Phase = %v, want %v", got.Phase, tt.wantPhase)
			}
			if got.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %v, want %v", got.ErrorKind, tt.wantKind)
			}
			if got.ErrorMessage != tt.wantMessage {
				t.Errorf("ErrorMessage = %q, want %q", got.ErrorMessage, tt.wantMessage)
			}
			if len(got.Results) != tt.wantResults {
				t.Errorf("len(Results) = %d, want %d", len(got.Results), tt.wantResults)
			}
			if got.LastSubmittedQuery != tt.wantLast {
				t.Errorf("LastSubmittedQuery = %q, want %q", got.LastSubmittedQuery, tt.wantLast)
			}
		})
	}
}

func TestMoreRequested_KeepsResults(t *testing.T) {
	prev := readyState("M1", "M2", "M3")
	prev.ErrorKind = domain.ErrorNoMoreResults
	prev.ErrorMessage = domain.MsgNoMoreResults

	got := moreRequested(prev)
	if got.Phase != LoadingMore {
		t.Errorf("Phase = %v, want loading_more", got.Phase)
	}
	if len(got.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(got.Results))
	}
	if got.HasError() {
		t.Errorf("ErrorMessage = %q, want cleared", got.ErrorMessage)
	}
}

func TestMoreResolved(t *testing.T) {
	loading := moreRequested(readyState("M1", "M2", "M3"))

	tests := []struct {
		name        string
		resp        *domain.SearchResponse
		err         error
		wantPhase   Phase
		wantKind    domain.ErrorKind
		wantMessage string
		wantTitles  []string
		wantBatch   int
	}{
		{"append", mock.Response(mock.Movies("M4", "M5")...), nil, Ready, domain.ErrorNone, "", []string{"M1", "M2", "M3", "M4", "M5"}, 2},
		{"no more", mock.Response(), nil, Ready, domain.ErrorNoMoreResults, "No more results available", []string{"M1", "M2", "M3"}, 0},
		{"bad query", mock.BadQuery(), nil, Failed, domain.ErrorInvalidQuery, "Requests must be for movies", []string{"M1", "M2", "M3"}, 0},
		{"transport", nil, errors.New("502"), Failed, domain.ErrorTransportFailure, "Failed to load more results. Please try again.", []string{"M1", "M2", "M3"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moreResolved(loading, tt.resp, tt.err)

			if got.Phase != tt.wantPhase {
				t.Errorf("Phase = %v, want %v", got.Phase, tt.wantPhase)
			}
			if got.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %v, want %v", got.ErrorKind, tt.wantKind)
			}
			if got.ErrorMessage != tt.wantMessage {
				t.Errorf("ErrorMessage = %q, want %q", got.ErrorMessage, tt.wantMessage)
			}
			titles := domain.Titles(got.Results)
			if len(titles) != len(tt.wantTitles) {
				t.Fatalf("titles = %v, want %v", titles, tt.wantTitles)
			}
			for i := range titles {
				if titles[i] != tt.wantTitles[i] {
					t.Errorf("titles[%d] = %q, want %q", i, titles[i], tt.wantTitles[i])
				}
			}
			if got.LastBatch != tt.wantBatch {
				t.Errorf("LastBatch = %d, want %d", got.LastBatch, tt.wantBatch)
			}
			if got.LastSubmittedQuery != "inception" {
				t.Errorf("LastSubmittedQuery = %q, load more must not change it", got.LastSubmittedQuery)
			}
		})
	}
}

func TestMoreResolved_DoesNotAliasInput(t *testing.T) {
	loading := moreRequested(readyState("M1"))
	loading.Results = append(make([]domain.ResultRecord, 0, 10), loading.Results...)

	a := moreResolved(loading, mock.Response(mock.Movies("A")...), nil)
	b := moreResolved(loading, mock.Response(mock.Movies("B")...), nil)

	if a.Results[1].Title != "A" || b.Results[1].Title != "B" {
		t.Errorf("appends share backing array: %q %q", a.Results[1].Title, b.Results[1].Title)
	}
}

func TestQueryCleared_OnlyResetsQuery(t *testing.T) {
	prev := readyState("M1", "M2")
	got := queryCleared(prev)

	if got.Query != "" {
		t.Errorf("Query = %q, want empty", got.Query)
	}
	if got.Phase != Ready || len(got.Results) != 2 || got.LastSubmittedQuery != "inception" {
		t.Errorf("ClearQuery touched more than the query: %+v", got)
	}
}

func TestState_Presentation(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		loading     bool
		canLoadMore bool
	}{
		{"idle", State{Phase: Idle}, false, false},
		{"searching", State{Phase: Searching}, true, false},
		{"loading more", State{Phase: LoadingMore, Results: mock.Movies("A")}, true, false},
		{"ready with results", State{Phase: Ready, Results: mock.Movies("A")}, false, true},
		{"ready empty", State{Phase: Ready}, false, false},
		{"failed with results", State{Phase: Failed, Results: mock.Movies("A")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Loading(); got != tt.loading {
				t.Errorf("Loading() = %v, want %v", got, tt.loading)
			}
			if got := tt.state.CanLoadMore(); got != tt.canLoadMore {
				t.Errorf("CanLoadMore() = %v, want %v", got, tt.canLoadMore)
			}
		})
	}
}

func TestState_NewResults(t *testing.T) {
	s := State{Results: mock.Movies("A", "B", "C"), LastBatch: 2}
	got := s.NewResults()
	if len(got) != 2 || got[0].Title != "B" {
		t.Errorf("NewResults() = %v", domain.Titles(got))
	}

	s.LastBatch = 0
	if got := s.NewResults(); got != nil {
		t.Errorf("NewResults() = %v, want nil", got)
	}

	s.LastBatch = 7
	if got := s.NewResults(); got != nil {
		t.Errorf("NewResults() with oversized batch = %v, want nil", got)
	}
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		kind domain.ErrorKind
		more bool
		want string
	}{
		{domain.ErrorNone, false, ""},
		{domain.ErrorInvalidQuery, false, "Requests must be for movies"},
		{domain.ErrorInvalidQuery, true, "Requests must be for movies"},
		{domain.ErrorEmptyResult, false, "No movies found"},
		{domain.ErrorNoMoreResults, true, "No more results available"},
		{domain.ErrorTransportFailure, false, "Failed to fetch results. Please try again."},
		{domain.ErrorTransportFailure, true, "Failed to load more results. Please try again."},
	}

	for _, tt := range tests {
		if got := MessageFor(tt.kind, tt.more); got != tt.want {
			t.Errorf("MessageFor(%v, %v) = %q, want %q", tt.kind, tt.more, got, tt.want)
		}
	}
}
