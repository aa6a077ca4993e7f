// internal/app/features/profile/handler.go
//
// Package profile serves the signed-in administrator's own account.
package profile

import (
	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	profilestore "github.com/dalemusser/rekaphub/internal/app/store/profiles"
	"go.uber.org/zap"
)

// Handler owns the own-account handlers.
type Handler struct {
	Profiles *profilestore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(b),
		Log:      logger,
		ErrLog:   errLog,
	}
}
