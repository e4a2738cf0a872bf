package ui

import (
	"net/http"
	"strconv"

	"github.com/thep200/github-harvester/internal/model"
)

type ContributorView struct {
	ID            uint   `json:"id"`
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	ProfileURL    string `json:"profileUrl"`
	RepoFullName  string `json:"repoFullName"`
	UpdatedAt     string `json:"updatedAt"`
}

func (h *Handler) getContributors(w http.ResponseWriter, r *http.Request) {
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

	offset := (page - 1) * pageSize
	query := h.db.Offset(offset).Limit(pageSize).Order("contributions DESC")

	// Filter theo repository nếu có
	repo := r.URL.Query().Get("repo")
	if repo != "" {
		query = query.Where("repo_full_name = ?", repo)
	}

	var contributors []model.Contributor
	result := query.Find(&contributors)
	if result.Error != nil {
		h.Logger.Error(r.Context(), "Failed to fetch contributors: %v", result.Error)
		http.Error(w, "Failed to fetch contributors", http.StatusInternalServerError)
		return
	}

	var totalCount int64
	countQuery := h.db.Model(&model.Contributor{})
	if repo != "" {
		countQuery = countQuery.Where("repo_full_name = ?", repo)
	}
	countQuery.Count(&totalCount)

	var views []ContributorView
	for _, c := range contributors {
		views = append(views, ContributorView{
			ID:            c.ID,
			Login:         c.Login,
			Contributions: c.Contributions,
			ProfileURL:    c.ProfileURL,
			RepoFullName:  c.RepoFullName,
			UpdatedAt:     c.UpdatedAt.Format("2006-01-02"),
		})
	}

	response := map[string]interface{}{
		"contributors": views,
		"pagination": map[string]interface{}{
			"page":       page,
			"pageSize":   pageSize,
			"totalCount": totalCount,
			"totalPages": (totalCount + int64(pageSize) - 1) / int64(pageSize),
		},
	}

	h.writeJSON(w, r, response)
}
