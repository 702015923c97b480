package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"pvpleaderboard.com/viewer/internal/aggregate"
	"pvpleaderboard.com/viewer/internal/leaderboard"
	"pvpleaderboard.com/viewer/internal/logging"
	"pvpleaderboard.com/viewer/internal/model"
)

// leaderboardRow : an entry plus its display classes
type leaderboardRow struct {
	model.LeaderboardEntry
	RealmLabel  string `json:"realm_label"`
	RatingTier  string `json:"rating_tier"`
	WinrateTier string `json:"winrate_tier"`
}

type leaderboardResponse struct {
	Bracket  model.Bracket                     `json:"bracket"`
	Query    string                            `json:"query"`
	Sort     leaderboard.SortKey               `json:"sort"`
	Dir      string                            `json:"dir"`
	Meta     leaderboard.MetaLine              `json:"meta"`
	MetaText string                            `json:"meta_text"`
	Entries  []leaderboardRow                  `json:"entries"`
	Empty    bool                              `json:"empty"`
	Sources  map[string]aggregate.SourceStatus `json:"sources"`
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	bracket := model.Bracket(mux.Vars(r)["bracket"])
	if !bracket.Valid() {
		s.fail(w, http.StatusBadRequest, codeBadRequest)
		return
	}
	q := r.URL.Query()
	sort := leaderboard.SortState{Key: leaderboard.ParseSortKey(q.Get("sort"))}
	if sort.Key != leaderboard.SortNone {
		sort.Dir = leaderboard.ParseDirection(q.Get("dir"))
	}

	standings, sources := s.views.Leaderboard(r.Context())
	view := leaderboard.Render(standings, leaderboard.ViewContext{Bracket: bracket, Query: q.Get("q"), Sort: sort})

	rows := make([]leaderboardRow, 0, len(view.Entries))
	for _, e := range view.Entries {
		rows = append(rows, leaderboardRow{
			LeaderboardEntry: e,
			RealmLabel:       leaderboard.RealmDisplayName(e),
			RatingTier:       leaderboard.RatingTier(e.Rating),
			WinrateTier:      leaderboard.WinrateTier(e.Winrate),
		})
	}
	resp := leaderboardResponse{
		Bracket:  bracket,
		Query:    view.Context.Query,
		Sort:     sort.Key,
		Meta:     view.Meta,
		MetaText: view.Meta.String(),
		Entries:  rows,
		Empty:    view.Empty,
		Sources:  sources,
	}
	if sort.Key != leaderboard.SortNone {
		resp.Dir = sort.Dir.String()
	}
	s.success(w, resp)
}

func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := s.views.Character(r.Context(), vars["name"], vars["realm"])
	if aggregate.IsNotFound(err) || view.NotFound {
		s.fail(w, http.StatusNotFound, codeNotFound)
		return
	}
	if err != nil {
		s.logger.Printf("%s Character %s-%s failed: %s", logging.ErrPrefix, vars["name"], vars["realm"], err)
		s.fail(w, http.StatusInternalServerError, codeInternal)
		return
	}

	q := r.URL.Query()
	if b := model.Bracket(q.Get("bracket")); b.Valid() {
		view = view.WithBracket(b)
	}
	if spec, err := strconv.Atoi(q.Get("spec")); err == nil {
		view = view.WithSpec(spec)
	}
	s.success(w, view)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := IssueURL(s.issueRepo, ParseKind(q.Get("type")), q.Get("name"), leaderboard.RealmLabel(q.Get("realm")))
	if err != nil {
		s.fail(w, http.StatusBadRequest, codeBadRequest)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
