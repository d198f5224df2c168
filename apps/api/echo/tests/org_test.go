package tests

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/uzimahq/uzima/core/org"
	"github.com/uzimahq/uzima/core/user"
	testutil "github.com/uzimahq/uzima/tests"
)

func Test_orgApi_locations(t *testing.T) {
	staff := testutil.CreateUser(t, usrRepo, "Ol Staff", "olstaff", "olstaff@test.cd", "", []string{user.RoleStaff}, true)
	admin := testutil.CreateUser(t, usrRepo, "Ol Admin", "oladmin", "oladmin@test.cd", "", []string{user.RoleAdmin}, true)

	staffToken := getToken(t, staff)
	adminToken := getToken(t, admin)
	body := marshallObj(t, org.NewLocation{Name: "Ol Saint Luc", City: "Kinshasa"})

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Admin required", body: body, token: staffToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "missing name", body: []byte("{}"), token: adminToken, wantCode: http.StatusBadRequest},
		{name: "admin creates", body: body, token: adminToken, wantCode: http.StatusCreated},
		{
			name: "duplicate name", body: marshallObj(t, org.NewLocation{Name: "ol saint luc"}), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"name": org.ErrLocationExists.Error()}),
		},
	}

	var loc org.Location
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/locations", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				decodeBody(t, rec, &loc)
			}
		})
	}

	// any authenticated user can read
	req, rec := newAuthRequest(http.MethodGet, "/v1/locations/"+strconv.Itoa(loc.ID), staffToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, loc)}, rec)

	// partial update keeps unset fields
	req, rec = newAuthRequest(http.MethodPut, "/v1/locations/"+strconv.Itoa(loc.ID), adminToken,
		marshallObj(t, map[string]string{"city": "Lubumbashi"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var updated org.Location
	decodeBody(t, rec, &updated)
	if updated.Name != loc.Name {
		t.Errorf("name = %q; want %q", updated.Name, loc.Name)
	}
	if updated.City != "Lubumbashi" {
		t.Errorf("city = %q; want %q", updated.City, "Lubumbashi")
	}
}

func Test_orgApi_departments(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Od Admin", "odadmin", "odadmin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)
	loc := testutil.CreateLocation(t, orgRepo, "Od Monkole", "Kinshasa")

	tests := []httpTest{
		{
			name: "unknown location", body: marshallObj(t, org.NewDepartment{Name: "Od Lost", LocationID: 987654}), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"location_id": org.ErrLocationNotFound.Error()}),
		},
		{name: "admin creates", body: marshallObj(t, org.NewDepartment{Name: "Od Surgery", LocationID: loc.ID}), token: adminToken, wantCode: http.StatusCreated},
		{
			name: "duplicate name at same location", body: marshallObj(t, org.NewDepartment{Name: "od surgery", LocationID: loc.ID}), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"name": org.ErrDepartmentExists.Error()}),
		},
	}

	var dept org.Department
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/departments", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				decodeBody(t, rec, &dept)
			}
		})
	}

	// departments are listed under their location
	req, rec := newAuthRequest(http.MethodGet, "/v1/locations/"+strconv.Itoa(loc.ID)+"/departments", adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallList(t, dept)}, rec)

	// a location with departments cannot be removed
	req, rec = newAuthRequest(http.MethodDelete, "/v1/locations/"+strconv.Itoa(loc.ID), adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: org.ErrLocationInUse.Error()}),
	}, rec)

	// empty it first, then remove it
	req, rec = newAuthRequest(http.MethodDelete, "/v1/departments/"+strconv.Itoa(dept.ID), adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/locations/"+strconv.Itoa(loc.ID), adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func Test_orgApi_departmentInUse(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Ou Admin", "ouadmin", "ouadmin@test.cd", "", []string{user.RoleAdmin}, true)
	quality := testutil.CreateUser(t, usrRepo, "Ou Qual", "ouquali", "ouquali@test.cd", "", []string{user.RoleQualityManager}, true)
	loc := testutil.CreateLocation(t, orgRepo, "Ou Site", "Kinshasa")
	dept := testutil.CreateDepartment(t, orgRepo, "Ou Surgery", loc.ID)

	tpc := createTopic(t, getToken(t, quality), "ou topic", "", dept.ID, 0)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/departments/"+strconv.Itoa(dept.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshallObj(t, httpErr{Error: org.ErrDepartmentInUse.Error()}),
	}, rec)

	if err := tpcRepo.DeleteTopicsByID(tpc.ID); err != nil {
		t.Fatalf("DeleteTopicsByID() failed: %v", err)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/v1/departments/"+strconv.Itoa(dept.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
}
