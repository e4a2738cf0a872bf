package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// UserExists kiểm tra xem user có tồn tại hay không
func (c *Caller) UserExists(ctx context.Context, username string) (bool, error) {
	url := fmt.Sprintf("%s/users/%s", c.Config.GithubApi.ApiUrl, username)
	_, err := c.Send(ctx, http.MethodGet, url)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RepoExists kiểm tra xem repository có tồn tại hay không
func (c *Caller) RepoExists(ctx context.Context, owner, repo string) (bool, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", c.Config.GithubApi.ApiUrl, owner, repo)
	_, err := c.Send(ctx, http.MethodGet, url)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UserDetails lấy thông tin chi tiết của một user
func (c *Caller) UserDetails(ctx context.Context, username string) (RawRecord, error) {
	url := fmt.Sprintf("%s/users/%s", c.Config.GithubApi.ApiUrl, username)
	resp, err := c.Send(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	var detail RawRecord
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("cannot decode user detail: %v", err)}
	}
	return detail, nil
}

// RepoDetails lấy thông tin chi tiết của một repository
func (c *Caller) RepoDetails(ctx context.Context, owner, repo string) (RawRecord, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", c.Config.GithubApi.ApiUrl, owner, repo)
	resp, err := c.Send(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	var detail RawRecord
	if err := json.Unmarshal(resp.Body, &detail); err != nil {
		return nil, &FatalError{Reason: fmt.Sprintf("cannot decode repo detail: %v", err)}
	}
	return detail, nil
}

// StarRepo thêm một sao cho repository (fullName có dạng owner/repo)
func (c *Caller) StarRepo(ctx context.Context, fullName string) error {
	url := fmt.Sprintf("%s/user/starred/%s", c.Config.GithubApi.ApiUrl, fullName)
	_, err := c.Send(ctx, http.MethodPut, url)
	return err
}

// DeleteRepo xóa một repository của user đã xác thực.
// Chỉ dùng cho fork cleanup, luôn star trước khi xóa.
func (c *Caller) DeleteRepo(ctx context.Context, fullName string) error {
	url := fmt.Sprintf("%s/repos/%s", c.Config.GithubApi.ApiUrl, fullName)
	_, err := c.Send(ctx, http.MethodDelete, url)
	return err
}
