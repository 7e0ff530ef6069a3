package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printshop/internal/costbasis"
	"github.com/Simplici0/printshop/internal/format"
)

// resource wires the list/create/update store methods of one cost basis kind.
type resource[T any] struct {
	list   func(context.Context) ([]T, error)
	create func(context.Context, *T) error
	update func(context.Context, T) error
	setID  func(*T, int64)

	// defaults fills fields a request body may omit, such as Active.
	defaults func(*T)
}

func (res resource[T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	var item T
	if res.defaults != nil {
		res.defaults(&item)
	}
	return item, decodeJSON(w, r, &item)
}

func mountResource[T any](r chi.Router, path string, res resource[T]) {
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		items, err := res.list(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	})

	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		item, ok := res.decode(w, r)
		if !ok {
			return
		}
		if err := costbasis.Validate(item); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := res.create(r.Context(), &item); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	})

	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		item, ok := res.decode(w, r)
		if !ok {
			return
		}
		res.setID(&item, id)
		if err := costbasis.Validate(item); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := res.update(r.Context(), item); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings costbasis.Settings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if err := costbasis.Validate(settings); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := format.New(s.locale, settings.Currency); err != nil {
		writeServiceError(w, r, &costbasis.ValidationError{Fields: []costbasis.FieldError{{Field: "Currency", Message: "is not a known ISO 4217 code"}}})
		return
	}
	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
