package ui

import (
	"encoding/json"
	"net/http"

	"github.com/thep200/github-harvester/api"
	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/pkg/db"
	"github.com/thep200/github-harvester/pkg/log"
	"gorm.io/gorm"
)

// Handler manages HTTP requests for the harvester UI
type Handler struct {
	Logger log.Logger
	Config *cfg.Config
	MySQL  *db.Mysql
	API    *api.HarvesterAPI
	db     *gorm.DB
}

// NewHandler creates a new UI handler. Database endpoints are only
// registered when a MySQL connection is available.
func NewHandler(logger log.Logger, config *cfg.Config, mysql *db.Mysql, harvesterAPI *api.HarvesterAPI) (*Handler, error) {
	h := &Handler{
		Logger: logger,
		Config: config,
		MySQL:  mysql,
		API:    harvesterAPI,
	}

	if mysql != nil {
		db, err := mysql.Db()
		if err != nil {
			return nil, err
		}
		h.db = db
	}

	return h, nil
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/harvest", h.startHarvest)
	mux.HandleFunc("/api/harvest/stop", h.stopHarvest)
	mux.HandleFunc("/api/status", h.getStatus)
	mux.HandleFunc("/api/forks/clean", h.cleanFork)

	if h.db != nil {
		mux.HandleFunc("/api/followers", h.getFollowers)
		mux.HandleFunc("/api/contributors", h.getContributors)
	}
}

type harvestRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

func (h *Handler) startHarvest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req harvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.API.StartHarvest(req.Kind, req.Target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, r, map[string]string{"message": msg})
}

func (h *Handler) stopHarvest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	msg, err := h.API.StopHarvest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]string{"message": msg})
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.API.GetHarvestStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, stats)
}

type cleanForkRequest struct {
	FullName string `json:"fullName"`
}

func (h *Handler) cleanFork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cleanForkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FullName == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.API.CleanFork(req.FullName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]string{"message": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
