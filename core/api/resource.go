package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Resource is the REST gateway of one backend collection, e.g. `/quizzes`.
type Resource[T any] struct {
	client *Client
	path   string
}

func NewResource[T any](client *Client, path string) *Resource[T] {
	return &Resource[T]{client: client, path: "/" + strings.Trim(path, "/")}
}

// Name returns the collection path without its leading slash; it is the resource's cache identity.
func (r *Resource[T]) Name() string {
	return strings.TrimPrefix(r.path, "/")
}

func (r *Resource[T]) Client() *Client {
	return r.client
}

func (r *Resource[T]) itemPath(id string, sub ...string) string {
	p := r.path + "/" + url.PathEscape(id)
	for _, s := range sub {
		p += "/" + strings.Trim(s, "/")
	}
	return p
}

func (r *Resource[T]) List(ctx context.Context, q Query) (Page[T], error) {
	return CallPage[T](ctx, r.client, Request{Method: http.MethodGet, Path: r.path, Query: q.Values()})
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	return Call[T](ctx, r.client, Request{Method: http.MethodGet, Path: r.itemPath(id)})
}

func (r *Resource[T]) Create(ctx context.Context, payload interface{}) (T, error) {
	return Call[T](ctx, r.client, Request{Method: http.MethodPost, Path: r.path, Body: payload})
}

func (r *Resource[T]) Update(ctx context.Context, id string, payload interface{}) (T, error) {
	return Call[T](ctx, r.client, Request{Method: http.MethodPut, Path: r.itemPath(id), Body: payload})
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, Request{Method: http.MethodDelete, Path: r.itemPath(id)}, nil)
	return err
}

// SubPath returns the path of a resource specific endpoint, e.g. `/quizzes/{id}/statistics`.
func (r *Resource[T]) SubPath(id string, sub ...string) string {
	if id == "" {
		p := r.path
		for _, s := range sub {
			p += "/" + strings.Trim(s, "/")
		}
		return p
	}
	return r.itemPath(id, sub...)
}

// Action issues a resource specific call to `SubPath(id, sub...)` and decodes its data into `out`.
func (r *Resource[T]) Action(ctx context.Context, method, id string, body, out interface{}, sub ...string) (Meta, error) {
	return r.client.Do(ctx, Request{Method: method, Path: r.SubPath(id, sub...), Body: body}, out)
}
