package adapthttp

import (
	"net/http"

	"needsstep/internal/adapter/graph"
)

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req graph.Request
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "query is required"})
		return
	}

	res := s.graph.Do(r.Context(), req)
	if res.HasErrors() {
		s.log.Debug("graphql errors", "operation", req.OperationName, "errors", res.Errors)
	}
	writeJSON(w, http.StatusOK, res)
}
