package exam

import (
	"context"
	"net/http"

	"github.com/trezcool/masomo-admin/core/api"
)

const Path = "/exams"

type Gateway struct {
	*api.Resource[Exam]
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{Resource: api.NewResource[Exam](client, Path)}
}

// Results lists the graded attempts of the exam `id`.
func (gw *Gateway) Results(ctx context.Context, id string, q api.Query) (api.Page[Result], error) {
	return api.CallPage[Result](ctx, gw.Client(), api.Request{
		Method: http.MethodGet,
		Path:   gw.SubPath(id, "results"),
		Query:  q.Values(),
	})
}
