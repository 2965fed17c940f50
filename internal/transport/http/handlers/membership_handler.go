package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/bidaclub/backend/internal/services/auth"
	membershipsvc "github.com/bidaclub/backend/internal/services/memberships"
	"github.com/bidaclub/backend/internal/transport/http/dto"
	httperrors "github.com/bidaclub/backend/internal/transport/http/errors"
)

type MembershipHandler struct {
	memberships *membershipsvc.Service
}

func NewMembershipHandler(memberships *membershipsvc.Service) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.memberships == nil {
		writeInternal(w, "MEMBERSHIPS_SERVICE_UNAVAILABLE", "memberships service is unavailable")
		return
	}

	membership, err := h.memberships.Get(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, membershipsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid membership request")
		case errors.Is(err, membershipsvc.ErrNotFound):
			writeNotFound(w, "MEMBERSHIP_NOT_FOUND", "no membership for user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load membership")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MembershipResponse{
		UserID:         membership.UserID,
		MembershipType: string(membership.MembershipType),
		StartDate:      membership.StartDate,
		EndDate:        membership.EndDate,
		Status:         membership.Status,
		UpdatedAt:      membership.UpdatedAt,
	})
}
