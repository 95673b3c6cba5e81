package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/cotiza3d/internal/pricing"
	"github.com/Simplici0/cotiza3d/internal/store"
)

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		writeFailure(w, "settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		writeFailure(w, "settings", err)
		return
	}
	settings.LocalCurrency = strings.ToUpper(strings.TrimSpace(settings.LocalCurrency))
	if err := settings.Validate(); err != nil {
		writeFailure(w, "settings", err)
		return
	}
	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		writeFailure(w, "settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.store.ListMaterials(r.Context())
	if err != nil {
		writeFailure(w, "materials", err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMaterial(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "material", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	var m pricing.Material
	if err := decodeJSON(w, r, &m); err != nil {
		writeFailure(w, "material", err)
		return
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		writeFailure(w, "material", err)
		return
	}
	created, err := s.store.CreateMaterial(r.Context(), m)
	if err != nil {
		writeFailure(w, "material", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	var m pricing.Material
	if err := decodeJSON(w, r, &m); err != nil {
		writeFailure(w, "material", err)
		return
	}
	m.ID = chi.URLParam(r, "id")
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		writeFailure(w, "material", err)
		return
	}
	if err := s.store.UpdateMaterial(r.Context(), m); err != nil {
		writeFailure(w, "material", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMaterial(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "material", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := s.store.ListMachines(r.Context())
	if err != nil {
		writeFailure(w, "machines", err)
		return
	}
	writeJSON(w, http.StatusOK, machines)
}

func (s *server) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMachine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "machine", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	var m pricing.Machine
	if err := decodeJSON(w, r, &m); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	created, err := s.store.CreateMachine(r.Context(), m)
	if err != nil {
		writeFailure(w, "machine", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateMachine(w http.ResponseWriter, r *http.Request) {
	var m pricing.Machine
	if err := decodeJSON(w, r, &m); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	m.ID = chi.URLParam(r, "id")
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	if err := s.store.UpdateMachine(r.Context(), m); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMachine(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "machine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
