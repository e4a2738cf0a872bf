package harvester

import (
	"fmt"
	"strings"

	"github.com/thep200/github-harvester/internal/normalizer"
)

// Kind là loại dữ liệu cần thu thập
type Kind string

const (
	KindFollowers    Kind = "followers"
	KindContributors Kind = "contributors"
	KindForks        Kind = "forks"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFollowers, KindContributors, KindForks:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unsupported harvest kind: %q", s)
	}
}

// FetchTarget mô tả thực thể cần thu thập. Immutable sau khi job bắt đầu.
type FetchTarget struct {
	Kind     Kind
	Username string // cho followers
	Owner    string // cho contributors
	Repo     string // cho contributors
}

// NewFetchTarget build một FetchTarget từ kind và target dạng chuỗi:
// username cho followers, owner/repo cho contributors, rỗng cho forks
func NewFetchTarget(kind, target string) (FetchTarget, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return FetchTarget{}, err
	}

	t := FetchTarget{Kind: k}
	switch k {
	case KindFollowers:
		t.Username = target
	case KindContributors:
		parts := strings.SplitN(target, "/", 2)
		if len(parts) != 2 {
			return FetchTarget{}, fmt.Errorf("contributors target must be owner/repo, got %q", target)
		}
		t.Owner, t.Repo = parts[0], parts[1]
	}

	if err := t.Validate(); err != nil {
		return FetchTarget{}, err
	}
	return t, nil
}

func (t FetchTarget) Validate() error {
	switch t.Kind {
	case KindFollowers:
		if t.Username == "" {
			return fmt.Errorf("followers harvest requires a username")
		}
	case KindContributors:
		if t.Owner == "" || t.Repo == "" {
			return fmt.Errorf("contributors harvest requires owner and repo")
		}
	case KindForks:
		// Fork harvest chạy trên user đã xác thực, không cần tham số
	default:
		return fmt.Errorf("unsupported harvest kind: %q", t.Kind)
	}
	return nil
}

func (t FetchTarget) Describe() string {
	switch t.Kind {
	case KindFollowers:
		return fmt.Sprintf("followers of %s", t.Username)
	case KindContributors:
		return fmt.Sprintf("contributors of %s/%s", t.Owner, t.Repo)
	default:
		return "forks of authenticated user"
	}
}

// ExportFileName là tên file output cho từng loại harvest
func (t FetchTarget) ExportFileName() string {
	switch t.Kind {
	case KindFollowers:
		return "github_followers.csv.gz"
	case KindContributors:
		return "github_repo_contributions.csv.gz"
	default:
		return "github_forks.csv.gz"
	}
}

// Header là header CSV tương ứng với schema của loại harvest
func (t FetchTarget) Header() []string {
	switch t.Kind {
	case KindFollowers:
		return normalizer.FollowerHeader
	case KindContributors:
		return normalizer.ContributorHeader
	default:
		return normalizer.ForkHeader
	}
}
