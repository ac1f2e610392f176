package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/pagination"
	"onboard/internal/respond"
	"onboard/internal/services"
)

func CreateBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.CreateBotInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		bot, err := svc.Create(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, bot)
	}
}

func ListBots(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := services.BotFilters{
			BotType: q.Get("botType"),
			Search:  q.Get("search"),
		}
		out, err := svc.FindAll(reqCtx(r), filters, pagination.Parse(q))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}

func GetBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bot, err := svc.FindByID(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, bot)
	}
}

func UpdateBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.UpdateBotInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		bot, err := svc.Update(reqCtx(r), chi.URLParam(r, "id"), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, bot)
	}
}

func ArchiveBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bot, err := svc.Archive(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, bot)
	}
}

func DisableBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bot, err := svc.Disable(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, bot)
	}
}

func DeleteBot(svc *services.Bots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(reqCtx(r), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, nil)
	}
}
