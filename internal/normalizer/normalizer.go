// Gói normalizer chuyển bản ghi thô từ API thành các dòng schema cố định.
// Normalize là thuần túy, không I/O: làm sạch text (bỏ emoji và ký tự ngoài
// vùng in được), điền chuỗi rỗng cho field thiếu, và format lại ngày tháng.

package normalizer

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrMissingLogin được trả về khi bản ghi thiếu field định danh bắt buộc.
// Bản ghi như vậy bị bỏ qua và đếm lại, không làm fail cả job.
var ErrMissingLogin = errors.New("record is missing required login field")

type Normalizer struct {
	unprintablePattern *regexp.Regexp
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		// Mọi ký tự ngoài vùng ASCII in được: control char, emoji,
		// ký tự pictographic. Kết quả không bao giờ dài hơn input.
		unprintablePattern: regexp.MustCompile(`[^\x20-\x7E]+`),
	}
}

// CleanText loại bỏ emoji và các ký tự ngoài vùng in được khỏi một chuỗi
func (n *Normalizer) CleanText(s string) string {
	return n.unprintablePattern.ReplaceAllString(s, "")
}

// Follower chuẩn hóa detail của một follower thành FollowerRow
func (n *Normalizer) Follower(login string, detail map[string]interface{}) (*FollowerRow, error) {
	login = n.CleanText(login)
	if login == "" {
		return nil, ErrMissingLogin
	}

	// Field company bỏ luôn ký tự '@' đứng đầu
	company := n.cleanString(detail, "company")
	company = strings.TrimPrefix(company, "@")

	return &FollowerRow{
		Login:       login,
		Name:        n.cleanString(detail, "name"),
		Company:     company,
		Blog:        n.cleanString(detail, "blog"),
		Email:       n.cleanString(detail, "email"),
		Bio:         n.cleanString(detail, "bio"),
		PublicRepos: intField(detail, "public_repos"),
		Followers:   intField(detail, "followers"),
		Following:   intField(detail, "following"),
		CreatedAt:   n.formatDate(stringField(detail, "created_at")),
	}, nil
}

// Contributor chuẩn hóa một bản ghi contributor, gắn kèm tên repository
func (n *Normalizer) Contributor(raw map[string]interface{}, repoFullName string) (*ContributorRow, error) {
	login := n.CleanText(stringField(raw, "login"))
	if login == "" {
		return nil, ErrMissingLogin
	}

	return &ContributorRow{
		Login:         login,
		Contributions: intField(raw, "contributions"),
		ProfileURL:    n.cleanString(raw, "html_url"),
		RepoFullName:  n.CleanText(repoFullName),
	}, nil
}

// Fork chuẩn hóa một bản ghi repository fork
func (n *Normalizer) Fork(raw map[string]interface{}) (*ForkRow, error) {
	fullName := n.CleanText(stringField(raw, "full_name"))
	if fullName == "" {
		return nil, ErrMissingLogin
	}

	return &ForkRow{
		FullName:    fullName,
		Description: n.cleanString(raw, "description"),
		HTMLURL:     n.cleanString(raw, "html_url"),
		Stars:       intField(raw, "stargazers_count"),
		Forks:       intField(raw, "forks_count"),
		CreatedAt:   n.formatDate(stringField(raw, "created_at")),
	}, nil
}

// IsFork kiểm tra flag fork của một bản ghi repository
func IsFork(raw map[string]interface{}) bool {
	v, ok := raw["fork"].(bool)
	return ok && v
}

func (n *Normalizer) cleanString(raw map[string]interface{}, key string) string {
	return n.CleanText(stringField(raw, key))
}

// formatDate đổi timestamp RFC3339 của API sang dạng dd/mm/yyyy,
// parse không được thì giữ nguyên chuỗi đã làm sạch
func (n *Normalizer) formatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return n.CleanText(s)
	}
	return t.Format("02/01/2006")
}

func stringField(raw map[string]interface{}, key string) string {
	if raw == nil {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// intField đọc một field số, JSON decode số thành float64
func intField(raw map[string]interface{}, key string) int {
	if raw == nil {
		return 0
	}
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
