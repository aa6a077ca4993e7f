package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"n": 3})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"n":3}` {
		t.Errorf("body: got %s", body)
	}
}

func TestFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Fields(rec, http.StatusUnprocessableEntity, "Date is required.", map[string]string{"date": "Date is required."})
	if !strings.Contains(rec.Body.String(), `"fields":{"date":"Date is required."}`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}

func TestDecode(t *testing.T) {
	type in struct {
		Name string `json:"name"`
	}

	var v in
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Budi"}`))
	if err := Decode(httptest.NewRecorder(), r, &v); err != nil || v.Name != "Budi" {
		t.Errorf("Decode: got (%+v, %v)", v, err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nama":"Budi"}`))
	if err := Decode(httptest.NewRecorder(), r, &v); err == nil {
		t.Error("unknown field should fail")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := Decode(httptest.NewRecorder(), r, &v); err == nil {
		t.Error("empty body should fail")
	}
}
