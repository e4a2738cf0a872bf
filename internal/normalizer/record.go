package normalizer

import "strconv"

// FollowerRow là một dòng dữ liệu follower đã chuẩn hóa, schema cố định.
// Field thiếu luôn là chuỗi rỗng, không bao giờ null.
type FollowerRow struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at"`
}

// FollowerHeader là header CSV cho export follower
var FollowerHeader = []string{
	"login", "name", "company", "blog", "email", "bio",
	"public_repos", "followers", "following", "created_at",
}

func (r *FollowerRow) Fields() []string {
	return []string{
		r.Login, r.Name, r.Company, r.Blog, r.Email, r.Bio,
		strconv.Itoa(r.PublicRepos), strconv.Itoa(r.Followers), strconv.Itoa(r.Following),
		r.CreatedAt,
	}
}

// ContributorRow là một dòng dữ liệu contributor đã chuẩn hóa
type ContributorRow struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	ProfileURL    string `json:"profile_url"`
	RepoFullName  string `json:"repo_full_name"`
}

var ContributorHeader = []string{"login", "contributions", "profile_url", "repo_full_name"}

func (r *ContributorRow) Fields() []string {
	return []string{r.Login, strconv.Itoa(r.Contributions), r.ProfileURL, r.RepoFullName}
}

// ForkRow là một dòng dữ liệu fork đã chuẩn hóa
type ForkRow struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	CreatedAt   string `json:"created_at"`
}

var ForkHeader = []string{"full_name", "description", "html_url", "stars", "forks", "created_at"}

func (r *ForkRow) Fields() []string {
	return []string{
		r.FullName, r.Description, r.HTMLURL,
		strconv.Itoa(r.Stars), strconv.Itoa(r.Forks), r.CreatedAt,
	}
}
