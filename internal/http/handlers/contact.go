package handlers

import (
	"net/http"

	"studio/internal/contact"
	"studio/internal/middleware"
)

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (a *App) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if !a.decode(w, r, &sub) {
		return
	}
	sub.RemoteIP = middleware.ClientIP(r)
	res := a.Contact.Submit(r.Context(), sub)
	resp := contactResponse{Success: res.Success, Message: res.Message}
	if !res.Success {
		resp.Error = res.Message
	}
	a.json(w, contactStatus(res.Reason), resp)
}

func contactStatus(reason contact.Reason) int {
	switch reason {
	case contact.ReasonNone:
		return http.StatusOK
	case contact.ReasonRateLimited:
		return http.StatusTooManyRequests
	case contact.ReasonDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
