package http

import (
	"net/http"

	"cashflow/internal/log"
)

type analyticsQuery func(r *http.Request) (any, error)

// analytics adapts a read-only aggregate query to a handler answering
// {success, data}.
func (s *Server) analytics(op string, query analyticsQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := query(r)
		if err != nil {
			s.writeError(w, r, err, log.ComponentAnalytics, op)
			return
		}
		NewJSONResponse().Data(v).Write(w)
	}
}

func (s *Server) analyticsSummary(r *http.Request) (any, error) {
	return s.svc.Analytics.Summary(r.Context(), userID(r))
}

func (s *Server) monthlyComparison(r *http.Request) (any, error) {
	return s.svc.Analytics.MonthlyComparison(r.Context(), userID(r))
}

func (s *Server) categoryDistribution(r *http.Request) (any, error) {
	return s.svc.Analytics.CategoryDistribution(r.Context(), userID(r))
}

func (s *Server) trend(r *http.Request) (any, error) {
	return s.svc.Analytics.Trend(r.Context(), userID(r))
}

// monthComparison expects month1 and month2 as YYYY-MM.
func (s *Server) monthComparison(r *http.Request) (any, error) {
	q := r.URL.Query()
	return s.svc.Analytics.CompareMonths(r.Context(), userID(r), q.Get("month1"), q.Get("month2"))
}

func (s *Server) recentTransactions(r *http.Request) (any, error) {
	return s.svc.Analytics.Recent(r.Context(), userID(r))
}
