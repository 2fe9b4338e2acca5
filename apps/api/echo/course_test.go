package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/shule/core/course"
)

func Test_courseApi_query(t *testing.T) {
	resetDB(t)

	std := createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")
	adm := createAdmin(t, "boss", true)
	sleeper := createAdmin(t, "sleeper", false)
	maths := createCourse(t, "Mathematics", 4)
	bio := createCourse(t, "Biology", 3)

	tests := []httpTest{
		{
			name: "auth required", path: "/courses",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student can list", path: "/courses", token: getToken(t, KindStudent, std.ID),
			wantData: marchallList(t, maths, bio),
		},
		{
			name: "admin can list", path: "/courses", token: getToken(t, KindAdmin, adm.ID),
			wantData: marchallList(t, maths, bio),
		},
		{
			name: "deactivated admin can list", path: "/courses", token: getToken(t, KindAdmin, sleeper.ID),
			wantData: marchallList(t, maths, bio),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_create(t *testing.T) {
	resetDB(t)

	std := createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")
	adm := createAdmin(t, "boss", true)
	sleeper := createAdmin(t, "sleeper", false)

	payload := marchallObj(t, map[string]interface{}{
		"name": "Chemistry", "description": "Atoms and such", "lecturer": "Dr. Ilunga", "credits": 3,
	})

	tests := []httpTest{
		{
			name: "auth required", body: payload,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student forbidden", body: payload, token: getToken(t, KindStudent, std.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbiddenResp),
		},
		{
			name: "deactivated admin forbidden", body: payload, token: getToken(t, KindAdmin, sleeper.ID),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbiddenResp),
		},
		{
			name: "missing fields", body: []byte(`{"name": "Chemistry"}`), token: getToken(t, KindAdmin, adm.ID),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "zero credits", token: getToken(t, KindAdmin, adm.ID),
			body: marchallObj(t, map[string]interface{}{
				"name": "Chemistry", "description": "Atoms and such", "lecturer": "Dr. Ilunga", "credits": 0,
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", body: payload, token: getToken(t, KindAdmin, adm.ID),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/courses", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}

			if tt.wantCode == http.StatusCreated {
				crs, err := crsRepo.GetCourseByID(context.Background(), 1)
				if err != nil {
					t.Fatalf("GetCourseByID(): %v", err)
				}
				if crs.Name != "Chemistry" || crs.Credits != 3 {
					t.Errorf("persisted course = %+v", crs)
				}
			}
		})
	}
}

func Test_courseApi_detail(t *testing.T) {
	resetDB(t)

	std := createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")
	adm := createAdmin(t, "boss", true)
	maths := createCourse(t, "Mathematics", 4)

	stdToken := getToken(t, KindStudent, std.ID)
	admToken := getToken(t, KindAdmin, adm.ID)

	updated := maths
	updated.Name = "Applied Mathematics"
	updated.Credits = 5
	updatePayload := marchallObj(t, map[string]interface{}{
		"name": updated.Name, "description": maths.Description, "lecturer": maths.Lecturer, "credits": updated.Credits,
	})

	tests := []httpTest{
		{
			name: "retrieve: auth required", method: http.MethodGet, path: "/courses/course/1",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "retrieve: unknown id", method: http.MethodGet, path: "/courses/course/666", token: stdToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
		{
			name: "retrieve: malformed id", method: http.MethodGet, path: "/courses/course/lol", token: stdToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
		{
			name: "retrieve: ok", method: http.MethodGet, path: "/courses/course/1", token: stdToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, maths),
		},
		{
			name: "update: student forbidden", method: http.MethodPut, path: "/courses/course/1", token: stdToken,
			body: updatePayload, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbiddenResp),
		},
		{
			name: "update: unknown id", method: http.MethodPut, path: "/courses/course/666", token: admToken,
			body: updatePayload, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
		{
			name: "update: ok", method: http.MethodPut, path: "/courses/course/1", token: admToken,
			body: updatePayload, wantCode: http.StatusOK,
		},
		{
			name: "destroy: student forbidden", method: http.MethodDelete, path: "/courses/course/1", token: stdToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbiddenResp),
		},
		{
			name: "destroy: ok", method: http.MethodDelete, path: "/courses/course/1", token: admToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "destroy: already gone", method: http.MethodDelete, path: "/courses/course/1", token: admToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFoundResp),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}

			if tt.name == "update: ok" {
				crs, err := crsRepo.GetCourseByID(context.Background(), maths.ID)
				if err != nil {
					t.Fatalf("GetCourseByID(): %v", err)
				}
				if crs.Name != updated.Name || crs.Credits != updated.Credits {
					t.Errorf("persisted course = %+v; want %+v", crs, updated)
				}
			}
		})
	}

	if _, err := crsRepo.GetCourseByID(context.Background(), maths.ID); err != course.ErrNotFound {
		t.Errorf("course still present after destroy; err = %v", err)
	}
}
