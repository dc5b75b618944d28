package quiz

import (
	"context"
	"net/http"

	"github.com/trezcool/masomo-admin/core/api"
)

const (
	Path     = "/quizzes"
	TypePath = "/quiz-types"
)

// Gateway reads and writes quizzes and quiz types.
type Gateway struct {
	*api.Resource[Quiz]
	Types *api.Resource[QuizType]
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{
		Resource: api.NewResource[Quiz](client, Path),
		Types:    api.NewResource[QuizType](client, TypePath),
	}
}

func (gw *Gateway) Statistics(ctx context.Context, id string) (Statistics, error) {
	var stats Statistics
	_, err := gw.Action(ctx, http.MethodGet, id, nil, &stats, "statistics")
	return stats, err
}

// SetPublished publishes or unpublishes the quiz `id`.
func (gw *Gateway) SetPublished(ctx context.Context, id string, published bool) (Quiz, error) {
	var q Quiz
	_, err := gw.Action(ctx, http.MethodPatch, id, map[string]bool{"isPublished": published}, &q, "publish")
	return q, err
}
