package model

// FollowerMessage là cấu trúc dữ liệu follower gửi tới Kafka
type FollowerMessage struct {
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

// ContributorMessage là cấu trúc dữ liệu contributor gửi tới Kafka
type ContributorMessage struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	ProfileURL    string `json:"profile_url"`
	RepoFullName  string `json:"repo_full_name"`
}
