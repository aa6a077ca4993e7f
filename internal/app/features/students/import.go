// internal/app/features/students/import.go
package students

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dalemusser/rekaphub/internal/app/system/csvutil"
	"github.com/dalemusser/rekaphub/internal/app/system/respond"
	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/dalemusser/rekaphub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

type importRejected struct {
	Error  string              `json:"error"`
	Errors []csvutil.RowError  `json:"errors"`
	Rows   []csvutil.StudentRow `json:"rows"`
}

// openUpload returns the CSV payload: the "file" part of a multipart form,
// or the raw request body for any other content type.
func openUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(csvutil.MaxUploadSize); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file: %w", err)
	}
	return f, nil
}

func byFoldedName(rows []models.Named) map[string]string {
	m := make(map[string]string, len(rows))
	for _, n := range rows {
		m[text.Fold(n.Name)] = n.ID
	}
	return m
}

func resolve(name string, ids map[string]string) (*string, bool) {
	if name == "" {
		return nil, true
	}
	id, ok := ids[text.Fold(name)]
	if !ok {
		return nil, false
	}
	return &id, true
}

// HandleImport handles POST /students/import.
//
// Each line is "name[,class[,dormitory]]" where class and dormitory are
// names matched case-insensitively. Nothing is stored unless every line is valid.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, err := openUpload(w, r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "students: import upload", err, "upload a CSV file in the \"file\" field")
		return
	}
	defer body.Close()

	res, err := csvutil.ParseStudents(body, csvutil.DefaultParseOptions())
	switch {
	case errors.Is(err, csvutil.ErrTooManyRows):
		respond.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("a file may hold at most %d students", csvutil.MaxRows))
		return
	case err != nil:
		h.ErrLog.LogBadRequest(w, r, "students: import parse", err, "could not read the CSV file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	classes, err := h.Classes.List(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "students: import classes", err, "data unavailable")
		return
	}
	dorms, err := h.Dormitories.List(ctx)
	if err != nil {
		h.ErrLog.LogUnavailable(w, r, "students: import dormitories", err, "data unavailable")
		return
	}
	classIDs, dormIDs := byFoldedName(classes), byFoldedName(dorms)

	batch := make([]models.Student, 0, len(res.Rows))
	for _, row := range res.Rows {
		cid, ok := resolve(row.Class, classIDs)
		if !ok {
			res.Errors = append(res.Errors, csvutil.RowError{Line: row.Line, Reason: fmt.Sprintf("unknown class %q", row.Class)})
			continue
		}
		did, ok := resolve(row.Dormitory, dormIDs)
		if !ok {
			res.Errors = append(res.Errors, csvutil.RowError{Line: row.Line, Reason: fmt.Sprintf("unknown dormitory %q", row.Dormitory)})
			continue
		}
		batch = append(batch, models.Student{Name: row.Name, ClassID: cid, DormitoryID: did})
	}

	if res.HasErrors() {
		respond.JSON(w, http.StatusUnprocessableEntity, importRejected{
			Error:  res.Summary(10),
			Errors: res.Errors,
			Rows:   res.Rows,
		})
		return
	}
	if len(batch) == 0 {
		respond.Error(w, http.StatusUnprocessableEntity, "the file has no students")
		return
	}

	rows, err := h.Students.CreateMany(ctx, batch)
	if err != nil {
		h.storeError(w, r, "students: import", err)
		return
	}
	h.Log.Info("students imported", zap.Int("count", len(rows)))
	respond.JSON(w, http.StatusCreated, map[string]any{"created": len(rows), "students": rows})
}
