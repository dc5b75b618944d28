package activity

import "github.com/trezcool/masomo-admin/core/api"

const Path = "/activities"

type Gateway struct {
	*api.Resource[Activity]
}

func NewGateway(client *api.Client) *Gateway {
	return &Gateway{Resource: api.NewResource[Activity](client, Path)}
}
