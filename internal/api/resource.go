package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/trakker/internal/schema"
)

const maxBodyBytes = 1 << 20

// resource binds the five CRUD routes of one entity type to its catalog
// operations and schema functions.
type resource[T any] struct {
	entity string // singular, used in log operation names
	plural string // list response key

	load   func([]byte) (*T, error)
	list   func(context.Context) ([]*T, error)
	get    func(context.Context, int64) (*T, error)
	create func(context.Context, *T) (*T, error)
	update func(context.Context, int64, *T) (*T, error)
	remove func(context.Context, int64) error

	dumpOne  func(*T) schema.Document
	dumpMany func([]*T) []schema.Document
}

func (rs resource[T]) routes(r chi.Router) {
	r.Get("/", rs.handleList)
	r.Post("/", rs.handleCreate)
	r.Get("/{id}", rs.handleGet)
	r.Put("/{id}", rs.handleUpdate)
	r.Delete("/{id}", rs.handleDelete)
}

func (rs resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := rs.list(r.Context())
	if err != nil {
		writeError(w, "list "+rs.plural, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		rs.plural: rs.dumpMany(items),
		"total":   len(items),
	})
}

func (rs resource[T]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := rs.get(r.Context(), id)
	if err != nil {
		writeError(w, "get "+rs.entity, err)
		return
	}
	writeJSONWithETag(w, r, rs.dumpOne(item))
}

func (rs resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := rs.readBody(w, r)
	if !ok {
		return
	}
	item, err := rs.create(r.Context(), in)
	if err != nil {
		writeError(w, "create "+rs.entity, err)
		return
	}
	writeJSON(w, http.StatusCreated, rs.dumpOne(item))
}

func (rs resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := rs.readBody(w, r)
	if !ok {
		return
	}
	item, err := rs.update(r.Context(), id, in)
	if err != nil {
		writeError(w, "update "+rs.entity, err)
		return
	}
	writeJSON(w, http.StatusOK, rs.dumpOne(item))
}

func (rs resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := rs.remove(r.Context(), id); err != nil {
		writeError(w, "delete "+rs.entity, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rs resource[T]) readBody(w http.ResponseWriter, r *http.Request) (*T, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return nil, false
	}
	in, err := rs.load(body)
	if err != nil {
		writeError(w, "decode "+rs.entity, err)
		return nil, false
	}
	return in, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return 0, false
	}
	return id, true
}
