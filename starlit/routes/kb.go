package routes

import (
	"encoding/json"
	"net/http"

	"starlit/starlit/config"
	"starlit/starlit/controllers"
	"starlit/starlit/middlewares"

	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 20 << 20 // 20 MiB

func KBRoutes(ctrl *controllers.KBController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))
	// POST /kb/upload : multipart "file" field
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()
		userID := r.Context().Value(middlewares.UserIDKey).(int)
		doc, err := ctrl.Upload(r.Context(), userID, header.Filename,
			header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}
		json.NewEncoder(w).Encode(doc)
	})
	// GET /kb/documents : stored KB sources
	r.Get("/documents", func(w http.ResponseWriter, r *http.Request) {
		docs, err := ctrl.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		json.NewEncoder(w).Encode(docs)
	})
	return r
}
