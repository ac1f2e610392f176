package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/pagination"
	"onboard/internal/respond"
	"onboard/internal/services"
)

func CreateUser(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.CreateUserInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := svc.Create(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, user)
	}
}

func InviteUser(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.InviteUserInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := svc.Invite(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, user)
	}
}

func ListUsers(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.FindAll(reqCtx(r), pagination.Parse(r.URL.Query()))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}

func GetUser(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.FindByID(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, user)
	}
}

func UpdateUser(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.UpdateUserInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		user, err := svc.Update(reqCtx(r), chi.URLParam(r, "id"), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, user)
	}
}

func DeleteUser(svc *services.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(reqCtx(r), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, nil)
	}
}
