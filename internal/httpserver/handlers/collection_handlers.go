package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/pagination"
	"onboard/internal/respond"
	"onboard/internal/services"
)

func CreateCollection(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.CreateCollectionInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		c, err := svc.Create(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, c)
	}
}

func ListCollections(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.FindAll(reqCtx(r), pagination.Parse(r.URL.Query()))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}

func GetCollection(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.FindByID(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, c)
	}
}

func UpdateCollection(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.UpdateCollectionInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		c, err := svc.Update(reqCtx(r), chi.URLParam(r, "id"), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, c)
	}
}

func AddCollectionSource(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.AddSource(reqCtx(r), chi.URLParam(r, "id"), chi.URLParam(r, "sourceId"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, c)
	}
}

func RemoveCollectionSource(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.RemoveSource(reqCtx(r), chi.URLParam(r, "id"), chi.URLParam(r, "sourceId"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, c)
	}
}

func DeleteCollection(svc *services.Collections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(reqCtx(r), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, nil)
	}
}
