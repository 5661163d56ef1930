package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/eonhq/eon-backend/internal/repository"
)

const updateBody = `{"name":"Winter Gala","event_type":2,"date":"2030-01-01",` +
	`"time":"19:00:00","location":"Riverside Hall","no_of_tickets":100}`

func newUpdateRequest(t *testing.T, uid uint64) (echo.Context, *httptest.ResponseRecorder, *EventHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/events/10", strings.NewReader(updateBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id")
	c.SetParamNames("id")
	c.SetParamValues("10")
	c.Set("user_id", uid)

	h := NewEventHandler(repository.NewEventRepo(db), nil, nil, nil)
	return c, rec, h, mock
}

func responseMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env.Message
}

func TestUpdateMissingEventIsNotFound(t *testing.T) {
	c, rec, h, mock := newUpdateRequest(t, 7)
	mock.ExpectQuery("SELECT created_by FROM events").WillReturnError(sql.ErrNoRows)

	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown event", rec.Code)
	}
	if got := responseMessage(t, rec); got != "event not found" {
		t.Errorf("message = %q, want %q", got, "event not found")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateForeignEventIsForbidden(t *testing.T) {
	c, rec, h, mock := newUpdateRequest(t, 7)
	mock.ExpectQuery("SELECT created_by FROM events").
		WillReturnRows(sqlmock.NewRows([]string{"created_by"}).AddRow(8))

	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for another organizer's event", rec.Code)
	}
	if got := responseMessage(t, rec); got != "not your event" {
		t.Errorf("message = %q, want %q", got, "not your event")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateByCreatorSucceeds(t *testing.T) {
	c, rec, h, mock := newUpdateRequest(t, 7)
	mock.ExpectQuery("SELECT created_by FROM events").
		WillReturnRows(sqlmock.NewRows([]string{"created_by"}).AddRow(7))
	mock.ExpectExec("UPDATE events SET").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body %q", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
