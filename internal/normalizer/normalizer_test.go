package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_StripsEmojiAndUnprintable(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "hello world", "hello world"},
		{"emoji", "gopher 🐹 fan", "gopher  fan"},
		{"control chars", "line\x00one\ttwo", "lineonetwo"},
		{"vietnamese diacritics removed", "xin chào", "xin cho"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.CleanText(tt.input)
			assert.Equal(t, tt.want, got)
			// Output never grows relative to input
			assert.LessOrEqual(t, len(got), len(tt.input))
		})
	}
}

func TestFollower_Normalizes(t *testing.T) {
	n := NewNormalizer()

	detail := map[string]interface{}{
		"name":         "Octo 🐙 Cat",
		"company":      "@GitHub",
		"blog":         "https://example.com",
		"email":        "octo@example.com",
		"bio":          "I build things 🚀",
		"public_repos": float64(42),
		"followers":    float64(1000),
		"following":    float64(5),
		"created_at":   "2011-01-25T18:44:36Z",
	}

	row, err := n.Follower("octocat", detail)
	require.NoError(t, err)

	assert.Equal(t, "octocat", row.Login)
	assert.Equal(t, "Octo  Cat", row.Name)
	assert.Equal(t, "GitHub", row.Company, "leading @ must be stripped")
	assert.Equal(t, "I build things ", row.Bio)
	assert.Equal(t, 42, row.PublicRepos)
	assert.Equal(t, 1000, row.Followers)
	assert.Equal(t, "25/01/2011", row.CreatedAt)
}

func TestFollower_MissingFieldsBecomeEmpty(t *testing.T) {
	n := NewNormalizer()

	row, err := n.Follower("ghost", map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "ghost", row.Login)
	assert.Equal(t, "", row.Name)
	assert.Equal(t, "", row.Company)
	assert.Equal(t, "", row.Email)
	assert.Equal(t, 0, row.PublicRepos)
	assert.Equal(t, "", row.CreatedAt)

	// Schema cố định: số cột luôn bằng header
	assert.Len(t, row.Fields(), len(FollowerHeader))
}

func TestFollower_NilDetail(t *testing.T) {
	n := NewNormalizer()

	row, err := n.Follower("ghost", nil)
	require.NoError(t, err)
	assert.Equal(t, "ghost", row.Login)
}

func TestFollower_MissingLogin(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Follower("", map[string]interface{}{"name": "anon"})
	assert.ErrorIs(t, err, ErrMissingLogin)

	// Login toàn emoji sau khi clean cũng coi như thiếu
	_, err = n.Follower("🐹🐹", nil)
	assert.ErrorIs(t, err, ErrMissingLogin)
}

func TestContributor_Normalizes(t *testing.T) {
	n := NewNormalizer()

	raw := map[string]interface{}{
		"login":         "alice",
		"contributions": float64(321),
		"html_url":      "https://github.com/alice",
	}

	row, err := n.Contributor(raw, "octo/spoon-knife")
	require.NoError(t, err)

	assert.Equal(t, "alice", row.Login)
	assert.Equal(t, 321, row.Contributions)
	assert.Equal(t, "https://github.com/alice", row.ProfileURL)
	assert.Equal(t, "octo/spoon-knife", row.RepoFullName)
	assert.Len(t, row.Fields(), len(ContributorHeader))
}

func TestContributor_MissingLogin(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Contributor(map[string]interface{}{"contributions": float64(1)}, "octo/repo")
	assert.ErrorIs(t, err, ErrMissingLogin)
}

func TestFork_Normalizes(t *testing.T) {
	n := NewNormalizer()

	raw := map[string]interface{}{
		"full_name":        "octo/forked-thing",
		"description":      "a fork ✨",
		"html_url":         "https://github.com/octo/forked-thing",
		"stargazers_count": float64(3),
		"forks_count":      float64(1),
		"created_at":       "2020-12-31T23:59:59Z",
		"fork":             true,
	}

	row, err := n.Fork(raw)
	require.NoError(t, err)

	assert.Equal(t, "octo/forked-thing", row.FullName)
	assert.Equal(t, "a fork ", row.Description)
	assert.Equal(t, "31/12/2020", row.CreatedAt)
	assert.Len(t, row.Fields(), len(ForkHeader))
}

func TestIsFork(t *testing.T) {
	assert.True(t, IsFork(map[string]interface{}{"fork": true}))
	assert.False(t, IsFork(map[string]interface{}{"fork": false}))
	assert.False(t, IsFork(map[string]interface{}{}))
	assert.False(t, IsFork(map[string]interface{}{"fork": "yes"}))
}

func TestFormatDate_UnparseableKeptVerbatim(t *testing.T) {
	n := NewNormalizer()

	detail := map[string]interface{}{"created_at": "not-a-date"}
	row, err := n.Follower("bob", detail)
	require.NoError(t, err)
	assert.Equal(t, "not-a-date", row.CreatedAt)
}
