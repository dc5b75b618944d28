package class

import (
	"context"
	"net/http"

	"github.com/trezcool/masomo-admin/core/api"
	"github.com/trezcool/masomo-admin/core/user"
)

const Path = "/classes"

type Gateway struct {
	*api.Resource[Class]
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{Resource: api.NewResource[Class](client, Path)}
}

// Students lists the students enrolled in the class `id`.
func (gw *Gateway) Students(ctx context.Context, id string, q api.Query) (api.Page[user.User], error) {
	return api.CallPage[user.User](ctx, gw.Client(), api.Request{
		Method: http.MethodGet,
		Path:   gw.SubPath(id, "students"),
		Query:  q.Values(),
	})
}
