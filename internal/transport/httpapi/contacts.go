package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/rizza/internal/core"
	"github.com/sandevgo/rizza/pkg/log"
)

type ContactsHandler struct {
	repo core.ContactsRepository
}

func (h *ContactsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/contacts", h.handleCreate)
	r.Get("/contacts", h.handleList)
	r.Get("/contacts/{id}", h.handleGet)
}

type createContactRequest struct {
	Name             string `json:"name"`
	Nickname         string `json:"nickname"`
	RelationshipType string `json:"relationship_type"`
	Notes            string `json:"notes"`
}

func (h *ContactsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	contact, err := h.repo.CreateContact(r.Context(), core.Contact{
		Name:             payload.Name,
		Nickname:         payload.Nickname,
		RelationshipType: payload.RelationshipType,
		Notes:            payload.Notes,
	})
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("create contact failed")
		respondError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

func (h *ContactsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	contacts, err := h.repo.ListContacts(r.Context(), skip, limit)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("list contacts failed")
		respondError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	if contacts == nil {
		contacts = []core.Contact{}
	}

	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	contact, err := h.repo.GetContact(r.Context(), id)
	if errors.Is(err, core.ErrContactNotFound) {
		respondError(w, http.StatusNotFound, "Contact not found")
		return
	}
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("get contact failed")
		respondError(w, http.StatusInternalServerError, "failed to load contact")
		return
	}

	respondJSON(w, http.StatusOK, contact)
}
