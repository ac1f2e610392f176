package handlers

import (
	"net/http"

	"onboard/internal/respond"
	"onboard/internal/services"
)

func Register(svc *services.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.RegisterInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out, err := svc.Register(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, out)
	}
}

func Login(svc *services.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.LoginInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		out, err := svc.Login(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}

func ForgotPassword(svc *services.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.ForgotPasswordInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		msg, err := svc.ForgotPassword(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"message": msg})
	}
}

func ResetPassword(svc *services.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.ResetPasswordInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		token := r.URL.Query().Get("token")
		msg, err := svc.ResetPassword(reqCtx(r), token, *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, map[string]string{"message": msg})
	}
}
