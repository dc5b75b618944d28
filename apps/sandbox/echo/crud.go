package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-admin/core"
	"github.com/trezcool/masomo-admin/core/activity"
	"github.com/trezcool/masomo-admin/core/user"
	"github.com/trezcool/masomo-admin/storage/database/inmem"
)

// crud serves the list, detail, create, update and delete endpoints of one collection.
// C is its create form and U its edit form.
type crud[T, C, U any] struct {
	label     string // shown in messages and the audit log, e.g. "Quiz"
	resource  string
	table     *inmemdb.Table[T]
	db        *inmemdb.DB
	validator *core.Validator

	id      func(T) string
	name    func(T) string
	matches func(T, string) bool // search
	sorts   sortFuncs[T]
	filters map[string]func(T, string) bool

	cleanCreate func(*C)
	cleanUpdate func(*U)
	build       func(C, user.User) (T, error)
	checkUpdate func(U) error
	apply       func(T, U) T
	present     func(T) T // fills the server computed fields
	canDelete   func(T) error
}

// register mounts the endpoints on `g`; `write` guards the mutating ones.
func (h *crud[T, C, U]) register(g *echo.Group, write ...echo.MiddlewareFunc) {
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, write...)
	g.PUT("/:id", h.update, write...)
	g.DELETE("/:id", h.destroy, write...)
}

func (h *crud[T, C, U]) show(item T) T {
	if h.present != nil {
		return h.present(item)
	}
	return item
}

func (h *crud[T, C, U]) list(ctx echo.Context) error {
	lp := bindList(ctx)
	all := h.table.All()
	for i := range all {
		all[i] = h.show(all[i])
	}
	items := filter(all, func(item T) bool {
		if h.matches != nil && lp.Search != "" && !h.matches(item, lp.Search) {
			return false
		}
		for param, keep := range h.filters {
			if val := ctx.QueryParam(param); val != "" && !keep(item, val) {
				return false
			}
		}
		return true
	})
	h.sorts.apply(items, lp)
	page, p := paginate(items, lp)
	return respondPage(ctx, page, p)
}

func (h *crud[T, C, U]) retrieve(ctx echo.Context) error {
	item, err := h.table.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "finding %s", h.resource)
	}
	return respondOK(ctx, h.show(item))
}

func (h *crud[T, C, U]) create(ctx echo.Context) error {
	var data C
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	if h.cleanCreate != nil {
		h.cleanCreate(&data)
	}
	if err := h.validator.Struct(data); err != nil {
		return err
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	item, err := h.build(data, usr)
	if err != nil {
		return err
	}
	item = h.table.Insert(item)
	h.db.Log(usr, activity.ActionCreate, h.resource, h.id(item), fmt.Sprintf("%s %q created", h.label, h.name(item)), ctx.RealIP())

	return respond(ctx, http.StatusCreated, h.show(item), h.label+" created")
}

func (h *crud[T, C, U]) update(ctx echo.Context) error {
	var data U
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	if h.cleanUpdate != nil {
		h.cleanUpdate(&data)
	}
	if err := h.validator.Struct(data); err != nil {
		return err
	}
	if h.checkUpdate != nil {
		if err := h.checkUpdate(data); err != nil {
			return err
		}
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	item, err := h.table.Update(ctx.Param("id"), func(item *T) error {
		*item = h.apply(*item, data)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "updating %s", h.resource)
	}
	h.db.Log(usr, activity.ActionUpdate, h.resource, h.id(item), fmt.Sprintf("%s %q updated", h.label, h.name(item)), ctx.RealIP())

	return respondOK(ctx, h.show(item), h.label+" updated")
}

func (h *crud[T, C, U]) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	item, err := h.table.Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "finding %s", h.resource)
	}
	if h.canDelete != nil {
		if err := h.canDelete(item); err != nil {
			return err
		}
	}
	if err := h.table.Delete(h.id(item)); err != nil {
		return errors.Wrapf(err, "deleting %s", h.resource)
	}
	h.db.Log(usr, activity.ActionDelete, h.resource, h.id(item), fmt.Sprintf("%s %q deleted", h.label, h.name(item)), ctx.RealIP())

	return respondOK(ctx, nil, h.label+" deleted")
}
