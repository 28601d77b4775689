package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/reviewkit/aggregate"
	"github.com/rushteam/reviewkit/core"
	"github.com/rushteam/reviewkit/recommend"
)

type healthResponse struct {
	Status     string    `json:"status"`
	Generation uint64    `json:"generation"`
	Items      int       `json:"items"`
	Records    int       `json:"records"`
	MatrixRows int       `json:"matrix_rows"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.holder.Current()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Generation: snap.Generation,
		Items:      snap.Catalog.Len(),
		Records:    snap.Records,
		MatrixRows: snap.Index.Len(),
		LoadedAt:   snap.LoadedAt,
	})
}

type itemListResponse struct {
	Items []string `json:"items"`
}

// GET /api/v1/items?q=term
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	snap := s.holder.Current()
	ids := snap.Catalog.FilterByName(aggregate.NameContains(r.URL.Query().Get("q")))
	writeJSON(w, http.StatusOK, itemListResponse{Items: ids})
}

// GET /api/v1/items/search?expr=item.avg_positive > 0.5
func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	snap := s.holder.Current()
	ids, err := snap.Catalog.FilterByExpr(r.URL.Query().Get("expr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, itemListResponse{Items: ids})
}

type itemResponse struct {
	ItemID           string              `json:"item_id"`
	Records          int                 `json:"records"`
	SentimentCounts  map[string]int      `json:"sentiment_counts"`
	PositiveKeywords []string            `json:"positive_keywords"`
	NegativeKeywords []string            `json:"negative_keywords"`
	Averages         map[string]*float64 `json:"averages"`
	Percent          map[string]string   `json:"percent"`
}

// GET /api/v1/items/{id}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	snap := s.holder.Current()
	id := chi.URLParam(r, "id")
	agg, ok := snap.Catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(agg))
}

func newItemResponse(agg *core.ItemAggregate) itemResponse {
	resp := itemResponse{
		ItemID:           agg.ItemID,
		Records:          len(agg.Records),
		SentimentCounts:  make(map[string]int, len(core.Sentiments)),
		PositiveKeywords: nonNil(agg.PositiveKeywords),
		NegativeKeywords: nonNil(agg.NegativeKeywords),
		Averages:         make(map[string]*float64, 3),
		Percent:          make(map[string]string, 3),
	}
	for _, sent := range core.Sentiments {
		resp.SentimentCounts[sent.String()] = agg.SentimentCounts[sent]
	}
	for _, kind := range []core.ScoreKind{core.ScorePositive, core.ScoreNegative, core.ScoreNeutral} {
		avg := agg.AverageScore(kind)
		if !math.IsNaN(avg) {
			v := avg
			resp.Averages[string(kind)] = &v
		} else {
			resp.Averages[string(kind)] = nil
		}
		resp.Percent[string(kind)] = aggregate.FormatPercent(avg)
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type recommendResponse struct {
	UserID          string   `json:"user_id"`
	Recommendations []string `json:"recommendations"`
}

type explainedItem struct {
	ItemID string            `json:"item_id"`
	Labels map[string]string `json:"labels"`
}

type explainResponse struct {
	UserID          string          `json:"user_id"`
	Recommendations []explainedItem `json:"recommendations"`
}

// GET /api/v1/recommendations/{user}?n=5&explain=true
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	snap := s.holder.Current()
	userID := chi.URLParam(r, "user")

	topN := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		if n > recommend.MaxTopN {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("n must not exceed %d", recommend.MaxTopN))
			return
		}
		topN = n
	}

	if explain, _ := strconv.ParseBool(r.URL.Query().Get("explain")); explain {
		items, err := s.recommender.Engine.RecommendItems(r.Context(), userID, snap.ItemCatalog(), snap.NeighborIndex(), topN)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "no recommendations available")
			return
		}
		out := explainResponse{UserID: userID, Recommendations: make([]explainedItem, 0, len(items))}
		for _, it := range items {
			labels := make(map[string]string, len(it.Labels))
			for k, v := range it.Labels {
				labels[k] = v.Value
			}
			out.Recommendations = append(out.Recommendations, explainedItem{ItemID: it.ID, Labels: labels})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	ids := s.recommender.Recommend(r.Context(), snap.Generation, userID, snap.ItemCatalog(), snap.NeighborIndex(), topN)
	writeJSON(w, http.StatusOK, recommendResponse{UserID: userID, Recommendations: ids})
}
