package ui

import (
	"net/http"
	"strconv"

	"github.com/thep200/github-harvester/internal/model"
)

//
type FollowerView struct {
	ID          uint   `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"publicRepos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	JoinedAt    string `json:"joinedAt"`
	UpdatedAt   string `json:"updatedAt"`
}

//
func (h *Handler) getFollowers(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	pageStr := r.URL.Query().Get("page")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	pageSizeStr := r.URL.Query().Get("pageSize")
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	//
	search := r.URL.Query().Get("search")
	offset := (page - 1) * pageSize
	query := h.db.Offset(offset).Limit(pageSize).Order("followers DESC")

	// Search query
	if search != "" {
		search = "%" + search + "%"
		query = query.Where("login LIKE ? OR name LIKE ?", search, search)
	}

	var followers []model.Follower
	result := query.Find(&followers)
	if result.Error != nil {
		h.Logger.Error(r.Context(), "Failed to fetch followers: %v", result.Error)
		http.Error(w, "Failed to fetch followers", http.StatusInternalServerError)
		return
	}

	//
	var totalCount int64
	countQuery := h.db.Model(&model.Follower{})
	if search != "" {
		countQuery = countQuery.Where("login LIKE ? OR name LIKE ?", search, search)
	}
	countQuery.Count(&totalCount)

	// Response format
	var views []FollowerView
	for _, f := range followers {
		views = append(views, FollowerView{
			ID:          f.ID,
			Login:       f.Login,
			Name:        f.Name,
			Company:     f.Company,
			Blog:        f.Blog,
			Email:       f.Email,
			Bio:         f.Bio,
			PublicRepos: f.PublicRepos,
			Followers:   f.Followers,
			Following:   f.Following,
			JoinedAt:    f.JoinedAt,
			UpdatedAt:   f.UpdatedAt.Format("2006-01-02"),
		})
	}

	//
	response := map[string]interface{}{
		"followers": views,
		"pagination": map[string]interface{}{
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": totalCount,
			"totalPages": (totalCount + int64(pageSize) - 1) / int64(pageSize),
		},
	}

	h.writeJSON(w, r, response)
}
