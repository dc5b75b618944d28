package studyresource

import "github.com/trezcool/masomo-admin/core/api"

const Path = "/resources"

type Gateway struct {
	*api.Resource[Resource]
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{Resource: api.NewResource[Resource](client, Path)}
}
