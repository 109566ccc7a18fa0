package http

import (
	"net/http"
	"strings"

	"hamanets/internal/core"
	"hamanets/internal/log"
	"hamanets/internal/services"
	"hamanets/internal/stats"
)

type dayGroups struct {
	Groups []core.DayGroup `json:"groups"`
}

// handleListTransactions supports q (text), type, category and group=day.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := stats.Query{
		Text:       sanitizeInput(q.Get("q")),
		Type:       core.TransactionType(strings.TrimSpace(q.Get("type"))),
		CategoryID: strings.TrimSpace(q.Get("category")),
	}
	if query.Type != "" && !query.Type.Valid() {
		s.writeError(w, r, log.OpList, core.ErrInvalidType)
		return
	}

	txns := stats.Filter(s.store.Transactions(), s.store.Categories(), query)
	switch q.Get("group") {
	case "":
		writeJSON(w, http.StatusOK, txns)
	case "day":
		writeJSON(w, http.StatusOK, dayGroups{Groups: stats.GroupByDay(txns, s.now().Location())})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "group must be empty or day"})
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	tx.Description = sanitizeInput(tx.Description)
	out, err := s.svc.AddTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	tx.ID = r.PathValue("id")
	tx.Description = sanitizeInput(tx.Description)
	changed, err := s.svc.UpdateTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		writeNotFound(w, "transaction", tx.ID)
		return
	}
	out, _ := lookup(s.store.Transactions(), tx.ID, func(t core.Transaction) string { return t.ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.answerDelete(w, r, "transaction", id, func() (bool, error) {
		return s.svc.DeleteTransaction(r.Context(), id)
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.store.Categories()
	if t := core.TransactionType(r.URL.Query().Get("accepts")); t != "" {
		if !t.Valid() {
			s.writeError(w, r, log.OpList, core.ErrInvalidType)
			return
		}
		filtered := make([]core.Category, 0, len(cats))
		for _, c := range cats {
			if c.Accepts(t) {
				filtered = append(filtered, c)
			}
		}
		cats = filtered
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	c.Name = sanitizeInput(c.Name)
	out, err := s.svc.AddCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	c.ID = r.PathValue("id")
	c.Name = sanitizeInput(c.Name)
	changed, err := s.svc.UpdateCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		writeNotFound(w, "category", c.ID)
		return
	}
	out, _ := s.store.Category(c.ID)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.answerDelete(w, r, "category", id, func() (bool, error) {
		return s.svc.DeleteCategory(r.Context(), id)
	})
}

// handleListBudgets returns every budget with freshly computed spending.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.WithSpent(s.store.Budgets(), s.store.Transactions(), s.now(), s.policy))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(r, &b); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	out, err := s.svc.AddBudget(r.Context(), b)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(r, &b); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	b.ID = r.PathValue("id")
	changed, err := s.svc.UpdateBudget(r.Context(), b)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		writeNotFound(w, "budget", b.ID)
		return
	}
	out, _ := lookup(s.store.Budgets(), b.ID, func(b core.Budget) string { return b.ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.answerDelete(w, r, "budget", id, func() (bool, error) {
		return s.svc.DeleteBudget(r.Context(), id)
	})
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders := s.store.Reminders()
	if r.URL.Query().Get("active") == "true" {
		reminders = services.Active(reminders)
	}
	writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var rem core.Reminder
	if err := decodeJSON(r, &rem); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	rem.Title = sanitizeInput(rem.Title)
	out, err := s.svc.AddReminder(r.Context(), rem)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var rem core.Reminder
	if err := decodeJSON(r, &rem); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	rem.ID = r.PathValue("id")
	rem.Title = sanitizeInput(rem.Title)
	changed, err := s.svc.UpdateReminder(r.Context(), rem)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	if !changed {
		writeNotFound(w, "reminder", rem.ID)
		return
	}
	out, _ := lookup(s.store.Reminders(), rem.ID, func(r core.Reminder) string { return r.ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.answerDelete(w, r, "reminder", id, func() (bool, error) {
		return s.svc.DeleteReminder(r.Context(), id)
	})
}

// handleGetSettings never echoes the PIN.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.store.Settings()
	settings.Pin = ""
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch core.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	settings, err := s.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	settings.Pin = ""
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) answerDelete(w http.ResponseWriter, r *http.Request, entity, id string, del func() (bool, error)) {
	deleted, err := del()
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	if !deleted {
		writeNotFound(w, entity, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func lookup[T any](items []T, id string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}
