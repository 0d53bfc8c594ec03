package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v58/github"
)

// ErrCommentNotFound - комментарий не найден, возможно, он был удалён.
// Вызывающий обязан отличать этот случай от прочих ошибок API.
var ErrCommentNotFound = errors.New("comment not found")

const graphqlEndpoint = "https://api.github.com/graphql"

// Comment - представление комментария, достаточное для приёма заявки.
type Comment struct {
	ID        int64
	Body      string
	Author    string
	CreatedAt time.Time
}

// Reaction - одна реакция на комментарий.
type Reaction struct {
	ID      int64
	Content string
	Author  string
}

// Issue - представление треда аукциона.
type Issue struct {
	Number int
	URL    string
	NodeID string
}

// Client - интерфейс взаимодействия с трекером задач.
type Client interface {
	GetComment(ctx context.Context, commentID int64) (*Comment, error)
	ListReactions(ctx context.Context, commentID int64) ([]Reaction, error)
	PostComment(ctx context.Context, issueNumber int, body string) error
	UpdateComment(ctx context.Context, commentID int64, body string) error
	CreateIssue(ctx context.Context, title, body string) (*Issue, error)
	UpdateIssueBody(ctx context.Context, issueNumber int, body string) error
	CloseIssue(ctx context.Context, issueNumber int) error
	PinIssue(ctx context.Context, issueNumber int) error
	UnpinIssue(ctx context.Context, issueNumber int) error
}

// RESTClient - реализация Client поверх GitHub API.
type RESTClient struct {
	api        *gh.Client
	owner      string
	repo       string
	token      string
	httpClient *http.Client
}

// NewRESTClient создает новый экземпляр RESTClient.
func NewRESTClient(token, owner, repo string) *RESTClient {
	return &RESTClient{
		api:        gh.NewClient(nil).WithAuthToken(token),
		owner:      owner,
		repo:       repo,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetComment читает комментарий по идентификатору. 404 возвращается как ErrCommentNotFound.
func (c *RESTClient) GetComment(ctx context.Context, commentID int64) (*Comment, error) {
	return withRetry(ctx, func() (*Comment, error) {
		comment, resp, err := c.api.Issues.GetComment(ctx, c.owner, c.repo, commentID)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, ErrCommentNotFound
			}
			return nil, fmt.Errorf("failed to fetch comment %d: %w", commentID, err)
		}
		return &Comment{
			ID:        comment.GetID(),
			Body:      comment.GetBody(),
			Author:    comment.GetUser().GetLogin(),
			CreatedAt: comment.GetCreatedAt().Time,
		}, nil
	})
}

// ListReactions читает реакции на комментарий.
func (c *RESTClient) ListReactions(ctx context.Context, commentID int64) ([]Reaction, error) {
	return withRetry(ctx, func() ([]Reaction, error) {
		raw, resp, err := c.api.Reactions.ListIssueCommentReactions(ctx, c.owner, c.repo, commentID, &gh.ListOptions{PerPage: 100})
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return nil, ErrCommentNotFound
			}
			return nil, fmt.Errorf("failed to list reactions for comment %d: %w", commentID, err)
		}
		reactions := make([]Reaction, 0, len(raw))
		for _, r := range raw {
			reactions = append(reactions, Reaction{
				ID:      r.GetID(),
				Content: r.GetContent(),
				Author:  r.GetUser().GetLogin(),
			})
		}
		return reactions, nil
	})
}

// PostComment публикует комментарий в треде аукциона.
func (c *RESTClient) PostComment(ctx context.Context, issueNumber int, body string) error {
	_, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, issueNumber, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("failed to post comment on issue #%d: %w", issueNumber, err)
	}
	return nil
}

// UpdateComment заменяет текст существующего комментария.
func (c *RESTClient) UpdateComment(ctx context.Context, commentID int64, body string) error {
	_, _, err := c.api.Issues.EditComment(ctx, c.owner, c.repo, commentID, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", commentID, err)
	}
	return nil
}

// CreateIssue открывает тред аукциона.
func (c *RESTClient) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	issue, _, err := c.api.Issues.Create(ctx, c.owner, c.repo, &gh.IssueRequest{
		Title: gh.String(title),
		Body:  gh.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return &Issue{
		Number: issue.GetNumber(),
		URL:    issue.GetHTMLURL(),
		NodeID: issue.GetNodeID(),
	}, nil
}

// UpdateIssueBody заменяет тело треда аукциона.
func (c *RESTClient) UpdateIssueBody(ctx context.Context, issueNumber int, body string) error {
	_, _, err := c.api.Issues.Edit(ctx, c.owner, c.repo, issueNumber, &gh.IssueRequest{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("failed to update issue #%d: %w", issueNumber, err)
	}
	return nil
}

// CloseIssue закрывает тред аукциона.
func (c *RESTClient) CloseIssue(ctx context.Context, issueNumber int) error {
	_, _, err := c.api.Issues.Edit(ctx, c.owner, c.repo, issueNumber, &gh.IssueRequest{State: gh.String("closed")})
	if err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", issueNumber, err)
	}
	return nil
}

// PinIssue закрепляет тред. REST API закрепления не имеет, поэтому GraphQL.
func (c *RESTClient) PinIssue(ctx context.Context, issueNumber int) error {
	return c.pinMutation(ctx, issueNumber, "pinIssue")
}

// UnpinIssue открепляет тред.
func (c *RESTClient) UnpinIssue(ctx context.Context, issueNumber int) error {
	return c.pinMutation(ctx, issueNumber, "unpinIssue")
}

func (c *RESTClient) pinMutation(ctx context.Context, issueNumber int, mutation string) error {
	issue, _, err := c.api.Issues.Get(ctx, c.owner, c.repo, issueNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve issue #%d: %w", issueNumber, err)
	}

	query := fmt.Sprintf(`mutation { %s(input: {issueId: %q}) { issue { id } } }`, mutation, issue.GetNodeID())
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("failed to marshal %s mutation: %w", mutation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", mutation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute %s mutation: %w", mutation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s mutation returned status %d", mutation, resp.StatusCode)
	}
	return nil
}
