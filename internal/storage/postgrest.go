package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/termlab/termlab/internal/shared/types"
)

// PostgRESTConfig configures the connection to the record store's REST
// endpoint (a Supabase-style PostgREST API).
type PostgRESTConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PostgREST implements Store against a PostgREST API. Tables:
// terminal_accounts, virtual_files, users, activity_log. Transport-level
// retries and timeouts are configured here; callers see only the final
// outcome.
type PostgREST struct {
	client *resty.Client
}

// NewPostgREST creates a store client with retrying transport.
func NewPostgREST(cfg PostgRESTConfig) *PostgREST {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = nil

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	return &PostgREST{client: client}
}

var _ Store = (*PostgREST)(nil)

func eqInt(v int64) string {
	return "eq." + strconv.FormatInt(v, 10)
}

func (c *PostgREST) GetAccount(ctx context.Context, userID int64) (*types.Account, error) {
	var rows []types.Account
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/terminal_accounts")
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get account: store returned %s", resp.Status())
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *PostgREST) CreateAccount(ctx context.Context, userID int64, username, passwordHash string) (*types.Account, error) {
	home := "/home/" + username
	account := types.Account{
		UserID:       userID,
		Username:     username,
		PasswordHash: passwordHash,
		HomeDir:      home,
		CurrentDir:   home,
		CreatedAt:    time.Now().UTC(),
	}

	var rows []types.Account
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(account).
		SetResult(&rows).
		Post("/terminal_accounts")
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create account: store returned %s", resp.Status())
	}
	if len(rows) == 0 {
		return &account, nil
	}
	return &rows[0], nil
}

func (c *PostgREST) SetCurrentDir(ctx context.Context, userID int64, path string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetBody(map[string]string{"current_dir": path}).
		Patch("/terminal_accounts")
	if err != nil {
		return fmt.Errorf("set current dir: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("set current dir: store returned %s", resp.Status())
	}
	return nil
}

func (c *PostgREST) GetEntry(ctx context.Context, userID int64, path string) (*types.FileEntry, error) {
	var rows []types.FileEntry
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("path", "eq."+path).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/virtual_files")
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get entry: store returned %s", resp.Status())
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *PostgREST) ListChildren(ctx context.Context, userID int64, parentPath string) ([]types.FileEntry, error) {
	var rows []types.FileEntry
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("parent_path", "eq."+parentPath).
		SetQueryParam("order", "name.asc").
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get("/virtual_files")
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list children: store returned %s", resp.Status())
	}
	return rows, nil
}

func (c *PostgREST) CreateEntry(ctx context.Context, userID int64, path string, isDir bool, content, permissions string) error {
	now := time.Now().UTC()
	entry := types.FileEntry{
		UserID:      userID,
		Path:        path,
		ParentPath:  parentPath(path),
		Name:        leafName(path),
		IsDirectory: isDir,
		Content:     content,
		Permissions: permissions,
		Size:        len(content),
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(entry).
		Post("/virtual_files")
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("create entry: store returned %s", resp.Status())
	}
	return nil
}

func (c *PostgREST) UpdateContent(ctx context.Context, userID int64, path, content string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("path", "eq."+path).
		SetBody(map[string]interface{}{
			"content":     content,
			"size":        len(content),
			"modified_at": time.Now().UTC(),
		}).
		Patch("/virtual_files")
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update content: store returned %s", resp.Status())
	}
	return nil
}

func (c *PostgREST) UpdatePermissions(ctx context.Context, userID int64, path, permissions string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("path", "eq."+path).
		SetBody(map[string]interface{}{
			"permissions": permissions,
			"modified_at": time.Now().UTC(),
		}).
		Patch("/virtual_files")
	if err != nil {
		return fmt.Errorf("update permissions: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update permissions: store returned %s", resp.Status())
	}
	return nil
}

func (c *PostgREST) DeleteSubtree(ctx context.Context, userID int64, prefix string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("path", "like."+prefix+"*").
		Delete("/virtual_files")
	if err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete subtree: store returned %s", resp.Status())
	}
	return nil
}

// AddUsageTime is read-then-write on the users row; concurrent updates
// for the same user can lose increments, which matches the per-user
// single-session model.
func (c *PostgREST) AddUsageTime(ctx context.Context, userID int64, seconds int) error {
	var rows []struct {
		TotalTimeSeconds int `json:"total_time_seconds"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetQueryParam("select", "total_time_seconds").
		SetResult(&rows).
		Get("/users")
	if err != nil {
		return fmt.Errorf("add usage time: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add usage time: store returned %s", resp.Status())
	}

	current := 0
	if len(rows) > 0 {
		current = rows[0].TotalTimeSeconds
	}

	resp, err = c.client.R().
		SetContext(ctx).
		SetQueryParam("user_id", eqInt(userID)).
		SetBody(map[string]interface{}{
			"total_time_seconds": current + seconds,
			"last_seen":          time.Now().UTC(),
		}).
		Patch("/users")
	if err != nil {
		return fmt.Errorf("add usage time: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add usage time: store returned %s", resp.Status())
	}
	return nil
}

func (c *PostgREST) LogActivity(ctx context.Context, userID int64, kind, details string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"user_id":       userID,
			"activity_type": kind,
			"details":       details,
			"created_at":    time.Now().UTC(),
		}).
		Post("/activity_log")
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("log activity: store returned %s", resp.Status())
	}
	return nil
}
