package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/domain/entity"
)

// PostIndex mirrors posts into the search backend. Index writes are
// best-effort: implementations log failures instead of returning them, so
// the owning transaction never rolls back over a search-side hiccup.
type PostIndex interface {
	IndexPost(ctx context.Context, p *entity.Post)
	RemovePost(ctx context.Context, postID string)
	// RemoveUserPosts purges every document authored by userID. Called when
	// the user is deleted, where the post rows go away via cascade and no
	// per-post removal runs.
	RemoveUserPosts(ctx context.Context, userID string)
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// ESPostIndex is the Elasticsearch-backed PostIndex.
type ESPostIndex struct {
	Client *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewESPostIndex(client *elasticsearch.Client, index string, logger *logrus.Logger) *ESPostIndex {
	return &ESPostIndex{Client: client, Index: index, Logger: logger}
}

func (x *ESPostIndex) IndexPost(ctx context.Context, p *entity.Post) {
	doc := map[string]any{
		"id":         p.ID,
		"user_id":    p.UserID,
		"title":      p.Title,
		"content":    p.Content,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: x.Index, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.Client)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.Logger != nil {
		x.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (x *ESPostIndex) RemovePost(ctx context.Context, postID string) {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: postID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.Client)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("post_id", postID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

func (x *ESPostIndex) RemoveUserPosts(ctx context.Context, userID string) {
	query := map[string]any{
		"query": map[string]any{
			"term": map[string]any{"user_id": userID},
		},
	}
	b, _ := json.Marshal(query)
	req := esapi.DeleteByQueryRequest{Index: []string{x.Index}, Body: strings.NewReader(string(b))}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := req.Do(c, x.Client)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("user_id", userID).Warn("es delete-by-query failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.Logger != nil {
		x.Logger.WithField("status", res.Status()).WithField("user_id", userID).Warn("es delete-by-query response error")
	}
}

// Search performs a multi_match query over titles and content.
func (x *ESPostIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.Client.Search(
		x.Client.Search.WithContext(c),
		x.Client.Search.WithIndex(x.Index),
		x.Client.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
