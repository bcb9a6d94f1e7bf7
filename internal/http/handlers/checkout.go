package handlers

import (
	"errors"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/checkout"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/model"
)

type CheckoutHandler struct{}

func NewCheckoutHandler() *CheckoutHandler { return &CheckoutHandler{} }

type checkoutView struct {
	checkout.Summary
	Draft *checkout.Form `json:"draft,omitempty"`
}

// Summary backs the checkout page. An empty cart redirects to the cart view.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sf := storefrontFrom(r.Context())
	s, err := sf.Checkout.Begin()
	if errors.Is(err, checkout.ErrEmptyCart) {
		http.Redirect(w, r, "/me/cart", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	v := checkoutView{Summary: s}
	if d, ok := sf.Checkout.Draft(); ok {
		v.Draft = &d
	}
	writeJSON(w, http.StatusOK, v)
}

type droppedError struct {
	model.ErrorResponse
	Dropped []checkout.Dropped `json:"dropped,omitempty"`
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if !decodeBody(w, r, &form) {
		return
	}

	sf := storefrontFrom(r.Context())
	res, err := sf.Checkout.Submit(r.Context(), form)

	var verr *checkout.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errors.As(err, &verr):
		writeFieldErrors(w, r, verr.Fields)
	case errors.Is(err, cart.ErrAuthRequired):
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrSubmitInProgress):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrNothingToOrder):
		writeJSON(w, http.StatusConflict, droppedError{
			ErrorResponse: model.ErrorResponse{
				Error:         err.Error(),
				CorrelationID: middleware.GetCorrelationID(r.Context()),
			},
			Dropped: res.Dropped,
		})
	default:
		writeUpstreamError(w, r, err)
	}
}
