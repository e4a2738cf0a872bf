package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RawRecord là một bản ghi thô từ API, giữ nguyên field name -> value
type RawRecord map[string]interface{}

// Page là một trang kết quả từ listing endpoint.
// NextURL rỗng nghĩa là trang cuối cùng.
type Page struct {
	Records []RawRecord
	NextURL string
}

// FetchPage lấy một trang của một paginated listing. pageURL đóng vai trò
// continuation token: trang đầu tiên build từ target, các trang sau lấy
// từ Link header của trang trước.
func (c *Caller) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	resp, err := c.Send(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, err
	}

	var records []RawRecord
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("cannot decode page body: %v", err)}
	}

	return &Page{
		Records: records,
		NextURL: nextPageURL(resp.Header),
	}, nil
}

// nextPageURL trích URL của trang tiếp theo từ Link header,
// ví dụ: <https://api.github.com/user/repos?page=3>; rel="next", <...>; rel="last"
func nextPageURL(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}

	for _, part := range strings.Split(link, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		url := strings.TrimSpace(section[0])
		url = strings.TrimPrefix(url, "<")
		url = strings.TrimSuffix(url, ">")
		return url
	}
	return ""
}

// FollowersURL build URL trang đầu cho danh sách follower của một user
func (c *Caller) FollowersURL(username string) string {
	return fmt.Sprintf("%s/users/%s/followers?per_page=%d", c.Config.GithubApi.ApiUrl, username, c.perPage())
}

// ContributorsURL build URL trang đầu cho danh sách contributor của một repo
func (c *Caller) ContributorsURL(owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contributors?per_page=%d", c.Config.GithubApi.ApiUrl, owner, repo, c.perPage())
}

// OwnedReposURL build URL trang đầu cho danh sách repository của user đã xác thực
func (c *Caller) OwnedReposURL() string {
	return fmt.Sprintf("%s/user/repos?type=owner&per_page=%d", c.Config.GithubApi.ApiUrl, c.perPage())
}

func (c *Caller) perPage() int {
	if c.Config.GithubApi.PerPage > 0 {
		return c.Config.GithubApi.PerPage
	}
	return 100
}
