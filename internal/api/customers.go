package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sipico/nlsql-gateway/internal/storage"
)

// Customer validation limits.
const (
	MaxCustomerNameLen = 100
)

// DetailEmailRegistered is returned when the email is already in use.
const DetailEmailRegistered = "Email already registered"

// CreateCustomerRequest is the POST /customers body.
type CreateCustomerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// validate returns a client-facing message for the first invalid field.
func (req *CreateCustomerRequest) validate() string {
	n := utf8.RuneCountInString(req.Name)
	switch {
	case n < 1:
		return "name is required"
	case n > MaxCustomerNameLen:
		return "name must be at most 100 characters"
	case !validEmail(req.Email):
		return "email is invalid"
	}
	return ""
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// HandleCreateCustomer creates a customer record.
// POST /customers
// Body: {"name": "...", "email": "...", "phone": "..."}
func (h *Handler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.store.CreateCustomer(r.Context(), storage.NewCustomer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		writeDetail(w, http.StatusBadRequest, DetailEmailRegistered)
		return
	}
	if err != nil {
		h.logger.Error("customers.create_failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, DetailInternal)
		return
	}

	h.logger.Info("customers.created", "id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

// HandleListCustomers returns all customers.
// GET /customers
func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.logger.Error("customers.list_failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, DetailInternal)
		return
	}
	if customers == nil {
		customers = []*storage.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}
