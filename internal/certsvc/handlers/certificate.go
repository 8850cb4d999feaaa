package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/luxcert/cert-services/internal/certsvc/models"
	"github.com/luxcert/cert-services/internal/certsvc/service"

	log "github.com/sirupsen/logrus"
)

const maxImageSize = 32 << 20 // 32 MB

// IssueHandler runs the issuance pipeline for a multipart submission.
// The response is sent whether or not the mint produced a decodable
// signature: returning is what re-enables the client's submit control.
func (h *Handler) IssueHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "no session"})
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed multipart form"})
		return
	}

	var image []byte
	file, _, err := r.FormFile("image")
	if err == nil {
		image, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "failed to read image"})
			return
		}
	}

	in := service.IssueInput{
		Image: image,
		Details: models.WatchDetails{
			Description:  r.FormValue("description"),
			Brand:        r.FormValue("brandName"),
			Model:        r.FormValue("modelName"),
			SerialNumber: r.FormValue("serialNumber"),
			Year:         r.FormValue("productionYear"),
			Status:       r.FormValue("watchStatus"),
			Price:        r.FormValue("watchPriceEstimation"),
			Owner:        r.FormValue("watchOwner"),
		},
	}

	result, err := h.issueService.Issue(r.Context(), sess, in)
	if err != nil {
		log.Errorf("Error [IssueService.Issue] %s", err)
		if errors.Is(err, service.ErrNoImage) {
			h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "No file selected"})
			return
		}
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: result})
}

// ListCertificatesHandler returns the rebuilt registry snapshot for
// the session wallet.
func (h *Handler) ListCertificatesHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if sess == nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "no session"})
		return
	}

	rows, err := h.registryService.Snapshot(r.Context(), sess.Wallet)
	if err != nil {
		log.Errorf("Error [RegistryService.Snapshot] %s", err)
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: rows})
}
