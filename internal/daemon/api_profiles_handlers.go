package daemon

import (
	"encoding/json"
	"net/http"
	"strings"

	"switchboard/internal/types"
)

func (a *API) ProfilesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		profiles, err := a.Profiles.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		active, err := a.Profiles.GetActive(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := ProfileListResponse{Profiles: make([]*ProfileView, 0, len(profiles))}
		for _, p := range profiles {
			resp.Profiles = append(resp.Profiles, newProfileView(p))
		}
		if active != nil {
			resp.ActiveProfileID = active.ID
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodPost:
		var req CreateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		profile := &types.Profile{
			ID:         req.ID,
			Name:       req.Name,
			OAuthToken: req.OAuthToken,
			Email:      req.Email,
			ConfigDir:  req.ConfigDir,
		}
		// An empty id is allocated by the store; only caller-supplied ids
		// are validated up front.
		if strings.TrimSpace(req.ID) != "" {
			if _, err := types.NormalizeProfile(profile); err != nil {
				writeServiceError(w, invalidError(err.Error(), nil))
				return
			}
		}
		created, err := a.Profiles.Add(r.Context(), profile)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newProfileView(created))
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) ProfileByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/profiles/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			profile, ok, err := a.Profiles.Get(r.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !ok {
				writeServiceError(w, notFoundError("profile not found: "+id, nil))
				return
			}
			writeJSON(w, http.StatusOK, newProfileView(profile))
		case http.MethodPatch:
			var req UpdateProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "invalid json body",
				})
				return
			}
			profile, ok, err := a.Profiles.Get(r.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !ok {
				writeServiceError(w, notFoundError("profile not found: "+id, nil))
				return
			}
			if req.Name != nil {
				profile.Name = *req.Name
			}
			if req.Email != nil {
				profile.Email = *req.Email
			}
			if req.ConfigDir != nil {
				profile.ConfigDir = *req.ConfigDir
			}
			if _, err := types.NormalizeProfile(profile); err != nil {
				writeServiceError(w, invalidError(err.Error(), nil))
				return
			}
			updated, err := a.Profiles.Update(r.Context(), profile)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newProfileView(updated))
		case http.MethodDelete:
			if err := a.Profiles.Delete(r.Context(), id); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		default:
			writeMethodNotAllowed(w)
		}
		return
	}

	switch parts[1] {
	case "token":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req SetProfileTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid json body",
			})
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			writeServiceError(w, invalidError("token is required", nil))
			return
		}
		stored, err := a.Profiles.SetToken(r.Context(), id, req.Token, req.Email)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !stored {
			writeServiceError(w, notFoundError("profile not found: "+id, nil))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	case "activate":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		if err := a.Profiles.SetActive(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":                true,
			"active_profile_id": id,
		})
		return
	case "login":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		term, err := a.Controller.StartLogin(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, term)
		return
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (a *API) BestProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	exclude := strings.TrimSpace(r.URL.Query().Get("exclude"))
	profile, err := a.Controller.SuggestProfile(r.Context(), exclude)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BestProfileResponse{Profile: newProfileView(profile)})
}
