package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/api/middleware"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
)

// actor is the authenticated caller extracted from the request context.
type actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func actorFromRequest(r *http.Request) (actor, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "role context missing")
	}
	return actor{UserID: id, Role: role}, nil
}

func parseUUIDValue(raw, label string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}
