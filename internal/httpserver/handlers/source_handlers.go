package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"onboard/internal/apperr"
	"onboard/internal/models"
	"onboard/internal/pagination"
	"onboard/internal/respond"
	"onboard/internal/services"
)

var uploadMimeTypes = map[string]models.SourceType{
	"application/pdf": models.SourceTypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": models.SourceTypeDOCX,
}

func CreateSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.CreateSourceInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		source, err := svc.Create(reqCtx(r), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, source)
	}
}

// UploadSource accepts a multipart form with name, source_type and file
// fields. Only PDF and DOCX payloads are accepted, capped at 20 MiB.
func UploadSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes)
		if err := r.ParseMultipartForm(services.MaxUploadBytes); err != nil {
			respond.Error(w, r, apperr.BadRequest("File exceeds the 20 MB upload limit"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, r, apperr.BadRequest("file is required"))
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if _, ok := uploadMimeTypes[mimeType]; !ok {
			respond.Error(w, r, apperr.BadRequest("Only PDF and DOCX files are allowed"))
			return
		}
		ext := filepath.Ext(header.Filename)
		if ext == "" {
			if mimeType == "application/pdf" {
				ext = ".pdf"
			} else {
				ext = ".docx"
			}
		}
		name := r.FormValue("name")
		sourceType := models.SourceType(strings.ToUpper(r.FormValue("source_type")))
		source, err := svc.CreateFromUpload(reqCtx(r), name, sourceType, ext, file)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusCreated, source)
	}
}

func ListSources(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filters := services.SourceFilters{
			Search:     q.Get("search"),
			SourceType: q.Get("sourceType"),
		}
		out, err := svc.FindAll(reqCtx(r), filters, pagination.Parse(q))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, out)
	}
}

func GetSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, err := svc.FindByID(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, source)
	}
}

func DownloadSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.Download(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		w.Header().Set("Content-Type", info.MimeType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+info.Filename+`"`)
		http.ServeFile(w, r, info.AbsPath)
	}
}

func UpdateSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decode[services.UpdateSourceInput](r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		source, err := svc.Update(reqCtx(r), chi.URLParam(r, "id"), *in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, source)
	}
}

func RefreshSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, err := svc.Refresh(reqCtx(r), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, source)
	}
}

func LinkSourceBot(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, err := svc.LinkBot(reqCtx(r), chi.URLParam(r, "id"), chi.URLParam(r, "botId"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, source)
	}
}

func UnlinkSourceBot(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source, err := svc.UnlinkBot(reqCtx(r), chi.URLParam(r, "id"), chi.URLParam(r, "botId"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, source)
	}
}

func DeleteSource(svc *services.Sources) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(reqCtx(r), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, nil)
	}
}
