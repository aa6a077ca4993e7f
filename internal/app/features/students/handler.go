// internal/app/features/students/handler.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/rekaphub/internal/app/features/errors"
	"github.com/dalemusser/rekaphub/internal/app/recap"
	"github.com/dalemusser/rekaphub/internal/app/store/backend"
	lookupstore "github.com/dalemusser/rekaphub/internal/app/store/lookups"
	studentstore "github.com/dalemusser/rekaphub/internal/app/store/students"
	"github.com/dalemusser/rekaphub/internal/app/system/inputval"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Students    *studentstore.Store
	Classes     *lookupstore.Store
	Dormitories *lookupstore.Store
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(b backend.Backend, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Students:    studentstore.New(b),
		Classes:     lookupstore.Classes(b),
		Dormitories: lookupstore.Dormitories(b),
		Log:         logger,
		ErrLog:      errLog,
	}
}

// studentView is a student with its group names resolved. A reference to
// a deleted class or dormitory keeps its id and shows the "N/A" label.
type studentView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ClassID       *string `json:"class_id"`
	ClassName     string  `json:"class_name,omitempty"`
	DormitoryID   *string `json:"dormitory_id"`
	DormitoryName string  `json:"dormitory_name,omitempty"`
}

type groupNames struct {
	classes, dormitories map[string]string
}

func (h *Handler) groupNames(ctx context.Context) (groupNames, error) {
	cls, err := h.Classes.List(ctx)
	if err != nil {
		return groupNames{}, err
	}
	dorms, err := h.Dormitories.List(ctx)
	if err != nil {
		return groupNames{}, err
	}
	g := groupNames{classes: make(map[string]string, len(cls)), dormitories: make(map[string]string, len(dorms))}
	for _, c := range cls {
		g.classes[c.ID] = c.Name
	}
	for _, d := range dorms {
		g.dormitories[d.ID] = d.Name
	}
	return g, nil
}

func label(id *string, names map[string]string) string {
	if id == nil {
		return ""
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return recap.UnknownGroup
}

func (g groupNames) view(st models.Student) studentView {
	return studentView{
		ID:            st.ID,
		Name:          st.Name,
		ClassID:       st.ClassID,
		ClassName:     label(st.ClassID, g.classes),
		DormitoryID:   st.DormitoryID,
		DormitoryName: label(st.DormitoryID, g.dormitories),
	}
}

// checkRefs rejects a class or dormitory id that does not exist.
func (h *Handler) checkRefs(ctx context.Context, classID, dormitoryID *string) error {
	if classID != nil && *classID != "" {
		if _, err := h.Classes.GetByID(ctx, *classID); err != nil {
			if backend.IsNotFound(err) {
				return inputval.Invalid("class_id", "Class does not exist.")
			}
			return err
		}
	}
	if dormitoryID != nil && *dormitoryID != "" {
		if _, err := h.Dormitories.GetByID(ctx, *dormitoryID); err != nil {
			if backend.IsNotFound(err) {
				return inputval.Invalid("dormitory_id", "Dormitory does not exist.")
			}
			return err
		}
	}
	return nil
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, studentstore.ErrEmptyName) {
		h.ErrLog.Invalid(w, inputval.Invalid("name", "Name is required."))
		return
	}
	h.ErrLog.LogStoreError(w, r, msg, err, "could not save the student")
}
