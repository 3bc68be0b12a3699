package controllers

import (
	"net/http"

	"github.com/wasilonline/nova-checkout/api/responses"
	"github.com/wasilonline/nova-checkout/api/validators"
	checkoutsvc "github.com/wasilonline/nova-checkout/internal/checkout"
	"github.com/wasilonline/nova-checkout/internal/concierge"
	"github.com/wasilonline/nova-checkout/pkg/db/models"
	pkgerrors "github.com/wasilonline/nova-checkout/pkg/errors"
	"github.com/wasilonline/nova-checkout/pkg/logger"
)

// ConciergeAsk answers a shopper question, grounded in the session's cart
// when a session id is provided. It always returns an answer.
func ConciergeAsk(svc concierge.Service, checkoutSvc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "concierge service unavailable"))
			return
		}

		var payload conciergeRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var cart []checkoutsvc.CartItem
		var vendors []models.Vendor
		if payload.SessionID != "" && checkoutSvc != nil {
			session, err := checkoutSvc.Get(r.Context(), payload.SessionID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			cart = session.State.Cart
			vendors = session.Vendors
		}

		answer := svc.Ask(r.Context(), cart, vendors, payload.Query)
		responses.WriteSuccess(w, conciergeResponse{Answer: answer})
	}
}

type conciergeRequest struct {
	SessionID string `json:"sessionId"`
	Query     string `json:"query" validate:"omitempty,max=2000"`
}

type conciergeResponse struct {
	Answer string `json:"answer"`
}
