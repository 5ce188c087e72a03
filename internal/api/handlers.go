package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fTr0ut/ShelvesAI-sub003/pkg/backend"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/catalog"
	apperrors "github.com/fTr0ut/ShelvesAI-sub003/pkg/errors"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/layout"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/pipeline"
	"github.com/fTr0ut/ShelvesAI-sub003/pkg/store"
)

// layoutRequest is the body of POST /v1/layout.
type layoutRequest struct {
	Items        []catalog.Item `json:"items"`
	RowTolerance float64        `json:"row_tolerance,omitempty"`
	SpacingPad   float64        `json:"spacing_pad,omitempty"`
	BaseURL      string         `json:"base_url,omitempty"`
}

// layoutResponse is the layout payload shared by all layout endpoints.
type layoutResponse struct {
	Shelf string         `json:"shelf,omitempty"`
	Count int            `json:"count"`
	Items []layout.Item  `json:"items"`
	Stats pipeline.Stats `json:"stats,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleComputeLayout computes a layout from an inline item payload.
// An empty or fully-unresolvable payload is a valid layout, not an error.
func (s *Server) handleComputeLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidItems, err, "request body must be a JSON layout request"))
		return
	}
	if req.Items == nil {
		req.Items = []catalog.Item{}
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Items:        req.Items,
		RowTolerance: req.RowTolerance,
		SpacingPad:   req.SpacingPad,
		BaseURL:      req.BaseURL,
		Formats:      []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "layout computation failed"))
		return
	}

	s.writeJSON(w, http.StatusOK, layoutResponse{
		Count: len(result.Layout),
		Items: result.Layout,
		Stats: result.Stats,
	})
}

// handleShelfLayout serves the layout for a stored shelf, computing and
// persisting it on first access.
func (s *Server) handleShelfLayout(w http.ResponseWriter, r *http.Request) {
	s.serveShelfLayout(w, r, false)
}

// handleShelfRefresh recomputes a shelf's layout, bypassing every cache.
func (s *Server) handleShelfRefresh(w http.ResponseWriter, r *http.Request) {
	s.serveShelfLayout(w, r, true)
}

func (s *Server) serveShelfLayout(w http.ResponseWriter, r *http.Request, refresh bool) {
	ctx := r.Context()
	shelfID := chi.URLParam(r, "shelfID")

	shelf, err := s.store.Get(ctx, shelfID)
	switch {
	case err == nil:
		// Stored shelf: serve the persisted layout unless a recompute is due.
		if !refresh && shelf.Layout != nil {
			s.writeJSON(w, http.StatusOK, layoutResponse{
				Shelf: shelf.ID,
				Count: len(shelf.Layout),
				Items: shelf.Layout,
			})
			return
		}
	case errors.Is(err, store.ErrNotFound):
		// Unknown locally: fall back to the backend.
		shelf, err = s.fetchShelf(ctx, shelfID, refresh)
		if errors.Is(err, backend.ErrNotFound) || errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeShelfNotFound, "shelf %q not found", shelfID))
			return
		}
		if err != nil {
			s.logger.Error("fetch shelf failed", "shelf", shelfID, "err", err, "request_id", RequestID(ctx))
			s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "failed to fetch shelf"))
			return
		}
	default:
		s.logger.Error("store get failed", "shelf", shelfID, "err", err, "request_id", RequestID(ctx))
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "failed to load shelf"))
		return
	}

	items := shelf.Items
	if items == nil {
		items = []catalog.Item{}
	}
	result, err := s.runner.Execute(ctx, pipeline.Options{
		Items:   items,
		Refresh: refresh,
		Backend: s.backend,
		Formats: []string{pipeline.FormatJSON},
	})
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInternal, err, "layout computation failed"))
		return
	}

	if err := s.store.SaveLayout(ctx, shelf.ID, result.Layout); err != nil {
		// Serve the layout anyway; persistence is an optimization.
		s.logger.Warn("persist layout failed", "shelf", shelf.ID, "err", err)
	}

	s.writeJSON(w, http.StatusOK, layoutResponse{
		Shelf: shelf.ID,
		Count: len(result.Layout),
		Items: result.Layout,
		Stats: result.Stats,
	})
}

// fetchShelf pulls a shelf from the backend and stores it locally.
func (s *Server) fetchShelf(ctx context.Context, shelfID string, refresh bool) (*store.Shelf, error) {
	if s.backend == nil {
		return nil, store.ErrNotFound
	}
	remote, err := s.backend.FetchShelf(ctx, shelfID, refresh)
	if err != nil {
		return nil, err
	}
	shelf := &store.Shelf{
		ID:    remote.ID,
		Name:  remote.Name,
		Owner: remote.Owner,
		Items: remote.Items,
	}
	if shelf.ID == "" {
		shelf.ID = shelfID
	}
	if err := s.store.Put(ctx, shelf); err != nil {
		return nil, err
	}
	return shelf, nil
}

// ===== Response helpers =====

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "err", err)
	}
}

// writeError maps a structured error onto the JSON error envelope. Errors
// without a code surface as INTERNAL_ERROR so the envelope shape is uniform.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	var body errorBody
	body.Error.Code = string(code)
	body.Error.Message = apperrors.UserMessage(err)
	body.Error.RequestID = RequestID(r.Context())
	s.writeJSON(w, apperrors.HTTPStatus(err), body)
}
