package api

import (
	"context"
	"net/http"
	"strconv"

	"techstore-admin/internal/csvexport"
	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/service"
	"techstore-admin/internal/util"

	"github.com/gin-gonic/gin"
)

// resource adapts one entity service to the six CRUD routes. T is the row
// type of its list view and In the body accepted on create and update.
type resource[T, In any] struct {
	list   func(ctx context.Context, actor models.User, state listview.State) (listview.View[T], error)
	export func(ctx context.Context, actor models.User, state listview.State) (*service.Export, error)
	get    func(ctx context.Context, actor models.User, id int64) (any, error)
	create func(ctx context.Context, actor models.User, in In) (any, error)
	update func(ctx context.Context, actor models.User, id int64, in In) (any, error)
	remove func(ctx context.Context, actor models.User, id int64) error
}

func register[T, In any](g *gin.RouterGroup, h *Handler, r resource[T, In]) {
	g.GET("", func(c *gin.Context) {
		view, err := r.list(c.Request.Context(), currentUser(c), listState(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	})

	g.GET("/export", func(c *gin.Context) {
		exp, err := r.export(c.Request.Context(), currentUser(c), listState(c))
		if err != nil {
			h.respondError(c, err)
			return
		}
		h.sendCSV(c, exp)
	})

	g.GET("/:id", func(c *gin.Context) {
		id, ok := h.parseID(c)
		if !ok {
			return
		}
		record, err := r.get(c.Request.Context(), currentUser(c), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	})

	g.POST("", func(c *gin.Context) {
		var in In
		if !h.bind(c, &in) {
			return
		}
		record, err := r.create(c.Request.Context(), currentUser(c), in)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id, ok := h.parseID(c)
		if !ok {
			return
		}
		var in In
		if !h.bind(c, &in) {
			return
		}
		record, err := r.update(c.Request.Context(), currentUser(c), id, in)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := h.parseID(c)
		if !ok {
			return
		}
		if err := r.remove(c.Request.Context(), currentUser(c), id); err != nil {
			h.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ID",
			"details": err.Error(),
		})
		return 0, false
	}
	return id, true
}

// sendCSV answers with exp as a downloadable file. An export without rows
// is refused and nothing is sent.
func (h *Handler) sendCSV(c *gin.Context, exp *service.Export) {
	body, err := csvexport.EncodeString(exp.Headers, exp.Rows)
	if err != nil {
		h.respondError(c, err)
		return
	}

	util.CSVExportsTotal.WithLabelValues(exp.Collection).Inc()
	c.Header("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

func productResource(s *service.ProductService) resource[models.Product, service.ProductInput] {
	return resource[models.Product, service.ProductInput]{
		list: func(ctx context.Context, _ models.User, state listview.State) (listview.View[models.Product], error) {
			return s.List(ctx, state)
		},
		export: func(ctx context.Context, _ models.User, state listview.State) (*service.Export, error) {
			return s.Export(ctx, state)
		},
		get: func(ctx context.Context, _ models.User, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, actor models.User, in service.ProductInput) (any, error) {
			return s.Create(ctx, actor, in)
		},
		update: func(ctx context.Context, actor models.User, id int64, in service.ProductInput) (any, error) {
			return s.Update(ctx, actor, id, in)
		},
		remove: s.Delete,
	}
}

type categoryInput struct {
	Name string `json:"name"`
}

func categoryResource(s *service.CategoryService) resource[models.Category, categoryInput] {
	return resource[models.Category, categoryInput]{
		list: func(ctx context.Context, _ models.User, state listview.State) (listview.View[models.Category], error) {
			return s.List(ctx, state)
		},
		export: func(ctx context.Context, _ models.User, state listview.State) (*service.Export, error) {
			return s.Export(ctx, state)
		},
		get: func(ctx context.Context, _ models.User, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, actor models.User, in categoryInput) (any, error) {
			return s.Create(ctx, actor, in.Name)
		},
		update: func(ctx context.Context, actor models.User, id int64, in categoryInput) (any, error) {
			return s.Rename(ctx, actor, id, in.Name)
		},
		remove: s.Delete,
	}
}

func clientResource(s *service.ClientService) resource[service.ClientRow, service.ClientInput] {
	return resource[service.ClientRow, service.ClientInput]{
		list: func(ctx context.Context, _ models.User, state listview.State) (listview.View[service.ClientRow], error) {
			return s.List(ctx, state)
		},
		export: func(ctx context.Context, _ models.User, state listview.State) (*service.Export, error) {
			return s.Export(ctx, state)
		},
		get: func(ctx context.Context, _ models.User, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, actor models.User, in service.ClientInput) (any, error) {
			return s.Create(ctx, actor, in)
		},
		update: func(ctx context.Context, actor models.User, id int64, in service.ClientInput) (any, error) {
			return s.Update(ctx, actor, id, in)
		},
		remove: s.Delete,
	}
}

func orderResource(s *service.OrderService) resource[models.Order, service.OrderInput] {
	return resource[models.Order, service.OrderInput]{
		list: func(ctx context.Context, _ models.User, state listview.State) (listview.View[models.Order], error) {
			return s.List(ctx, state)
		},
		export: func(ctx context.Context, _ models.User, state listview.State) (*service.Export, error) {
			return s.Export(ctx, state)
		},
		get: func(ctx context.Context, _ models.User, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, actor models.User, in service.OrderInput) (any, error) {
			return s.Create(ctx, actor, in)
		},
		update: func(ctx context.Context, actor models.User, id int64, in service.OrderInput) (any, error) {
			return s.Update(ctx, actor, id, in)
		},
		remove: s.Delete,
	}
}

func invoiceResource(s *service.InvoiceService) resource[models.Invoice, service.InvoiceInput] {
	return resource[models.Invoice, service.InvoiceInput]{
		list: func(ctx context.Context, _ models.User, state listview.State) (listview.View[models.Invoice], error) {
			return s.List(ctx, state)
		},
		export: func(ctx context.Context, _ models.User, state listview.State) (*service.Export, error) {
			return s.Export(ctx, state)
		},
		get: func(ctx context.Context, _ models.User, id int64) (any, error) {
			return s.Get(ctx, id)
		},
		create: func(ctx context.Context, actor models.User, in service.InvoiceInput) (any, error) {
			return s.Create(ctx, actor, in)
		},
		update: func(ctx context.Context, actor models.User, id int64, in service.InvoiceInput) (any, error) {
			return s.Update(ctx, actor, id, in)
		},
		remove: s.Delete,
	}
}

func userResource(s *service.UserService) resource[models.User, service.UserInput] {
	return resource[models.User, service.UserInput]{
		list:   s.List,
		export: s.Export,
		get: func(ctx context.Context, actor models.User, id int64) (any, error) {
			return s.Get(ctx, actor, id)
		},
		create: func(ctx context.Context, actor models.User, in service.UserInput) (any, error) {
			return s.Create(ctx, actor, in)
		},
		update: func(ctx context.Context, actor models.User, id int64, in service.UserInput) (any, error) {
			return s.Update(ctx, actor, id, in)
		},
		remove: s.Delete,
	}
}
