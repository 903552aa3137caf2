package routes

import (
	"encoding/json"
	"net/http"

	"starlit/starlit/controllers"
	"starlit/starlit/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Username == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}
		token, err := ctrl.Login(r.Context(), req.Username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}
		json.NewEncoder(w).Encode(types.LoginResponse{Token: token})
	})
	return r
}
