package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lecturenotes/internal/export"
	"lecturenotes/internal/lecture"
	"lecturenotes/internal/pipeline"
)

const multipartMemory = 32 << 20

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	lectures, err := s.pipeline.Store().List(r.Context())
	if err != nil {
		s.logger.Errorf("list lectures: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to list lectures.")
		return
	}
	out := make([]lecture.Summary, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, l.Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves the {id} path value, writing the error response itself
// when it returns nil.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *lecture.Lecture {
	id := r.PathValue("id")
	if !lecture.ValidID(id) {
		writeDetail(w, http.StatusBadRequest, "Invalid lecture id.")
		return nil
	}
	l, err := s.pipeline.Store().Get(r.Context(), id)
	if err != nil {
		s.logger.Errorf("get lecture %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to load lecture.")
		return nil
	}
	if l == nil {
		writeDetail(w, http.StatusNotFound, "Lecture not found.")
		return nil
	}
	return l
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if l := s.lookup(w, r); l != nil {
		writeJSON(w, http.StatusOK, l)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.MaxUploadMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.Server.MaxUploadMB)<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds the %d MB limit.", s.cfg.Server.MaxUploadMB))
			return
		}
		writeDetail(w, http.StatusBadRequest, "Audio file is required.")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	meta := lecture.Meta{
		Title:       r.FormValue("title"),
		Course:      r.FormValue("course"),
		Lecturer:    r.FormValue("lecturer"),
		LectureDate: r.FormValue("lecture_date"),
	}.Normalize()
	if meta.Title == "" {
		writeDetail(w, http.StatusBadRequest, "Title is required.")
		return
	}
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Audio file is required.")
		return
	}
	defer file.Close()

	l, err := s.pipeline.Submit(r.Context(), pipeline.Upload{
		Meta:     meta,
		Filename: header.Filename,
		Audio:    file,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, l)
	case errors.Is(err, pipeline.ErrQueueFull):
		writeDetail(w, http.StatusServiceUnavailable, "Transcription queue is full.")
	case errors.Is(err, pipeline.ErrSaveAudio):
		s.logger.Errorf("save upload: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to save audio file.")
	default:
		s.logger.Errorf("create lecture: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to create lecture.")
	}
}

func (s *Server) handleGenerateNotes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !lecture.ValidID(id) {
		writeDetail(w, http.StatusBadRequest, "Invalid lecture id.")
		return
	}
	l, err := s.pipeline.GenerateNotes(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, lecture.NotesResponse{NotesText: l.Notes(), Status: l.Status})
	case errors.Is(err, pipeline.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Lecture not found.")
	case errors.Is(err, pipeline.ErrNoTranscript):
		writeDetail(w, http.StatusBadRequest, "Transcript not available.")
	case errors.Is(err, pipeline.ErrBusy):
		writeDetail(w, http.StatusConflict, "Lecture is busy.")
	default:
		s.logger.Errorf("generate notes %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Notes generation failed.")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	l := s.lookup(w, r)
	if l == nil {
		return
	}
	if strings.TrimSpace(l.Notes()) == "" {
		writeDetail(w, http.StatusBadRequest, "Notes not available.")
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Unsupported export format.")
		return
	}
	file, err := export.Render(format, export.FromLecture(l))
	if err != nil {
		s.logger.Errorf("export %s as %s: %v", l.ID, format, err)
		writeDetail(w, http.StatusInternalServerError, "Export failed.")
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	w.Header().Set("Content-Length", fmt.Sprint(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !lecture.ValidID(id) {
		writeDetail(w, http.StatusBadRequest, "Invalid lecture id.")
		return
	}
	err := s.pipeline.Delete(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Lecture deleted.", "id": id})
	case errors.Is(err, pipeline.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Lecture not found.")
	case errors.Is(err, pipeline.ErrBusy):
		writeDetail(w, http.StatusConflict, "Lecture is busy.")
	default:
		s.logger.Errorf("delete %s: %v", id, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to delete lecture.")
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.pipeline.Store().Count(r.Context())
	if err != nil {
		s.logger.Warnf("metrics: count lectures: %v", err)
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	pipeline.WritePrometheus(w, s.pipeline.Metrics.Snapshot(), s.pipeline.QueueDepth(), counts)
}
