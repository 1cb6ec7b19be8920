package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appExecutor "github.com/agent-hub/agent-hub/internal/application/executor"
	appTask "github.com/agent-hub/agent-hub/internal/application/task"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/sse"
)

type dispatchRequest struct {
	UserID  int64            `json:"user_id"`
	Payload executor.Payload `json:"payload"`
}

type planRequest struct {
	UserID      int64  `json:"user_id"`
	Description string `json:"description"`
}

type messageRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Payload == nil {
		req.Payload = executor.Payload{}
	}
	if _, ok := req.Payload["user_id"]; !ok {
		req.Payload["user_id"] = req.UserID
	}
	typ := chi.URLParam(r, "executorType")
	respondJSON(w, http.StatusOK, s.svc.Dispatcher.Execute(r.Context(), typ, req.Payload, req.UserID))
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "description is required")
		return
	}
	respondJSON(w, http.StatusOK, s.svc.Planner.PlanAndExecute(r.Context(), req.Description, req.UserID))
}

func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}
	respondJSON(w, http.StatusOK, s.svc.Chat.Handle(r.Context(), req.UserID, req.Text))
}

const multipartMemory = 8 << 20

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", files.ErrTooLarge.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user_id must be an integer")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}
	defer f.Close()

	path, size, err := s.svc.Uploads.SaveUpload(header.Filename, f)
	if err != nil {
		if errors.Is(err, files.ErrTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err.Error())
			return
		}
		s.logger.Error().Err(err).Str("file_name", header.Filename).Msg("save upload failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not store upload")
		return
	}

	u := upload.New(userID, header.Filename, header.Header.Get("Content-Type"), size, path)
	if err := s.svc.History.RecordUpload(r.Context(), u); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not record upload")
		return
	}

	result := s.svc.Dispatcher.Execute(r.Context(), string(executor.TypeFileAnalysis), executor.Payload{
		"file_path":     path,
		"analysis_type": "general",
		"user_id":       userID,
	}, userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"upload": u,
		"result": result,
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.svc.Status.Status())
}

func (s *Server) listExecutors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"executors": s.svc.Executors.List()})
}

func (s *Server) getExecutor(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Executors.Get(chi.URLParam(r, "executorId"))
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseUUIDParam(r, "taskId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid task id")
		return
	}
	rec, err := s.svc.History.Get(r.Context(), taskID)
	switch {
	case errors.Is(err, appTask.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not load task")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) listUserTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid user id")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 500)
	tasks, err := s.svc.History.ListTasks(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("list tasks failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not list tasks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks, "limit": limit, "offset": offset})
}

func (s *Server) listUserSearches(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid user id")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 500)
	searches, err := s.svc.History.ListSearches(r.Context(), userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("list searches failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not list searches")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"searches": searches, "limit": limit, "offset": offset})
}

func (s *Server) activateExecutor(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Executors.Activate(r.Context(), chi.URLParam(r, "executorId"))
	s.respondExecutorChange(w, snap, err)
}

func (s *Server) deactivateExecutor(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Executors.Deactivate(r.Context(), chi.URLParam(r, "executorId"))
	s.respondExecutorChange(w, snap, err)
}

func (s *Server) respondExecutorChange(w http.ResponseWriter, snap executor.Snapshot, err error) {
	switch {
	case errors.Is(err, appExecutor.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case err != nil:
		s.logger.Error().Err(err).Msg("executor status change failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not persist executor status")
	default:
		respondJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.History.Stats(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("stats failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "could not load stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":    stats.Tasks,
		"searches": stats.Searches,
		"uploads":  stats.Uploads,
		"system":   s.svc.Status.Status(),
	})
}

func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user_id must be an integer")
			return
		}
		userID = id
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}

	client := sse.NewClient(userID)
	s.svc.Events.Register(client)
	defer s.svc.Events.Unregister(client.ClientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg := <-client.MessageChan:
			if msg == nil {
				return
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", msg.ID, msg.Event, msg.Data)
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
