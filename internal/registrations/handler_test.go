package registrations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulxcodes/Demo-Webinars-sub000/pkg/response"
)

func newTestRouter(f *regFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, nil)
	r := gin.New()
	r.POST("/webinars/:id/register", h.Register)
	r.GET("/webinars/:id/registration", h.GetForm)
	r.GET("/join/validate/:token", h.ValidateJoin)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Body) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope response.Body
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, envelope
}

func TestRegisterEndpoint(t *testing.T) {
	f := newRegFixture(t)
	r := newTestRouter(f)

	rec, body := doJSON(t, r, http.MethodPost, "/webinars/"+f.webinar.ID.String()+"/register", gin.H{
		"user_name":  "Ada Lovelace",
		"user_email": "ada@example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !body.Success || body.Data == nil {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestRegisterEndpointStatusMapping(t *testing.T) {
	f := newRegFixture(t)
	r := newTestRouter(f)

	seed := func() {
		if _, err := f.submit("Ada", "ada@example.com", nil); err != nil {
			t.Fatalf("seed registration: %v", err)
		}
	}

	t.Run("validation error is 400 with fields", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodPost, "/webinars/"+f.webinar.ID.String()+"/register", gin.H{
			"user_name":  "Ada",
			"user_email": "not-an-email",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if body.Success || len(body.Fields) == 0 {
			t.Fatalf("expected field errors in envelope: %+v", body)
		}
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		seed()
		rec, _ := doJSON(t, r, http.MethodPost, "/webinars/"+f.webinar.ID.String()+"/register", gin.H{
			"user_name":  "Ada",
			"user_email": "ada@example.com",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("capacity is 409", func(t *testing.T) {
		f.forms.forms[f.webinar.ID].MaxAttendees = intPtr(1)
		rec, _ := doJSON(t, r, http.MethodPost, "/webinars/"+f.webinar.ID.String()+"/register", gin.H{
			"user_name":  "Grace",
			"user_email": "grace@example.com",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		f.forms.forms[f.webinar.ID].MaxAttendees = nil
	})

	t.Run("deadline is 400", func(t *testing.T) {
		f.forms.forms[f.webinar.ID].DeadlineHours = intPtr(48)
		rec, _ := doJSON(t, r, http.MethodPost, "/webinars/"+f.webinar.ID.String()+"/register", gin.H{
			"user_name":  "Grace",
			"user_email": "grace@example.com",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		f.forms.forms[f.webinar.ID].DeadlineHours = nil
	})

	t.Run("unknown webinar is 404", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPost, "/webinars/00000000-0000-0000-0000-000000000001/register", gin.H{
			"user_name":  "Ada",
			"user_email": "ada@example.com",
		})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec, _ := doJSON(t, r, http.MethodPost, "/webinars/not-a-uuid/register", gin.H{
			"user_name":  "Ada",
			"user_email": "ada@example.com",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestGetFormEndpoint(t *testing.T) {
	f := newRegFixture(t)
	r := newTestRouter(f)

	rec, body := doJSON(t, r, http.MethodGet, "/webinars/"+f.webinar.ID.String()+"/registration", nil)
	if rec.Code != http.StatusOK || !body.Success {
		t.Fatalf("status = %d, envelope %+v", rec.Code, body)
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/webinars/00000000-0000-0000-0000-000000000001/registration", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown webinar: status = %d", rec.Code)
	}
}

func TestValidateJoinEndpoint(t *testing.T) {
	f := newRegFixture(t)
	r := newTestRouter(f)

	reg, err := f.submit("Ada", "ada@example.com", nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Not started: 400.
	rec, _ := doJSON(t, r, http.MethodGet, "/join/validate/"+reg.JoinToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("before start: status = %d", rec.Code)
	}

	f.now = f.webinar.StartsAt.Add(time.Minute)
	rec, body := doJSON(t, r, http.MethodGet, "/join/validate/"+reg.JoinToken, nil)
	if rec.Code != http.StatusOK || !body.Success {
		t.Fatalf("in window: status = %d, envelope %+v", rec.Code, body)
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/join/validate/garbage", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bad token: status = %d", rec.Code)
	}
}
