package tests

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/uzimahq/uzima/core/user"
	testutil "github.com/uzimahq/uzima/tests"
)

func Test_userApi_login(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "janedoe", "jane@test.cd", "LolC@t123", nil, true)
	testutil.CreateUser(t, usrRepo, "Numb Nut", "numbnut", "numb@test.cd", "LolC@t123", nil, false)

	creds := func(uname, pwd string) []byte {
		return []byte(fmt.Sprintf(`{"username": %q, "password": %q}`, uname, pwd))
	}

	tests := []httpTest{
		{name: "empty credentials", body: []byte("{}"), wantCode: http.StatusBadRequest},
		{
			name: "unknown user", body: creds("ghost", "LolC@t123"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: creds("janedoe", "nope"), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: creds("numbnut", "LolC@t123"), wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", body: creds("janedoe", "LolC@t123"), wantCode: http.StatusOK},
		{name: "login with email", body: creds("jane@test.cd", "LolC@t123"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				decodeBody(t, rec, &resp)
				if resp.Token == "" {
					t.Error("expected a token")
				}
			}
		})
	}

	// successful logins land in the activity log
	refreshed, err := usrRepo.GetUserByID(usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed, %v", err)
	}
	if refreshed.LastLogin.IsZero() {
		t.Error("expected LastLogin to be set")
	}
}

func Test_userApi_query(t *testing.T) {
	// "zz" scopes this test's fixtures in the shared database
	usr1 := testutil.CreateUser(t, usrRepo, "zz Abel", "zzabel1", "zzabel@test.cd", "", nil, true)
	quality := testutil.CreateUser(t, usrRepo, "zz Quinn", "zzquinn", "zzquinn@test.cd", "", []string{user.RoleQualityManager}, true)
	admin := testutil.CreateUser(t, usrRepo, "zz Root", "zzroot1", "zzroot@test.cd", "", []string{user.RoleAdmin}, true)
	naughty := testutil.CreateUser(t, usrRepo, "zz Dog", "zzndog1", "zzndog@test.cd", "", nil, false)

	adminToken := getToken(t, admin)
	path := func(params url.Values) string { return "/v1/users?" + params.Encode() }

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, usr1),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "search (unknown)", path: path(url.Values{"search": {"zzzzzz-nope"}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t),
		},
		{
			name: "search + ordering", path: path(url.Values{"search": {"zz"}, "ordering": {"username"}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, usr1, naughty, quality, admin),
		},
		{
			name: "search + reverse ordering", path: path(url.Values{"search": {"zz"}, "ordering": {"-username"}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, admin, quality, naughty, usr1),
		},
		{
			name: "role filter", path: path(url.Values{"search": {"zz"}, "role": {user.RoleAdmin}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, admin),
		},
		{
			name: "role prefix matches sub-roles", path: path(url.Values{"search": {"zz"}, "role": {user.RoleQuality}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, quality),
		},
		{
			name: "is_active=false", path: path(url.Values{"search": {"zz"}, "is_active": {"false"}}), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, naughty),
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

func Test_userApi_register(t *testing.T) {
	staff := testutil.CreateUser(t, usrRepo, "Reg Staff", "regstaff", "regstaff@test.cd", "", []string{user.RoleStaff}, true)
	admin := testutil.CreateUser(t, usrRepo, "Reg Admin", "regadmin", "regadmin@test.cd", "", []string{user.RoleAdmin}, true)

	body := func(uname, email string, roles ...string) []byte {
		data := user.NewUser{
			Name:            "New " + uname,
			Username:        uname,
			Email:           email,
			Password:        "LolC@t123",
			PasswordConfirm: "LolC@t123",
			Roles:           roles,
		}
		return marshallObj(t, data)
	}

	tests := []httpTest{
		{name: "Auth required", body: body("nobody1", "nobody1@test.cd"), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Admin required", body: body("nobody1", "nobody1@test.cd"), token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "Admin creates", body: body("nobody1", "nobody1@test.cd", user.RoleStaff), token: getToken(t, admin), wantCode: http.StatusCreated},
		{
			name: "Duplicate username", body: body("nobody1", "other@test.cd"), token: getToken(t, admin),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "Cannot grant a role above own", body: body("nobody2", "nobody2@test.cd", user.RoleAdminOwner), token: getToken(t, admin),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				decodeBody(t, rec, &usr)
				if usr.ID == 0 {
					t.Error("expected an ID")
				}
				if !usr.IsStaff() {
					t.Error("expected the staff role")
				}
			}
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	usr := testutil.CreateUser(t, usrRepo, "Det Self", "detself", "detself@test.cd", "", nil, true)
	other := testutil.CreateUser(t, usrRepo, "Det Other", "detother", "detother@test.cd", "", nil, true)
	admin := testutil.CreateUser(t, usrRepo, "Det Admin", "detadmin", "detadmin@test.cd", "", []string{user.RoleAdmin}, true)

	usrToken := getToken(t, usr)
	adminToken := getToken(t, admin)
	detPath := func(id int) string { return "/v1/users/" + strconv.Itoa(id) }

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: detPath(usr.ID), wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "own profile", method: http.MethodGet, path: detPath(usr.ID), token: usrToken,
			wantCode: http.StatusOK, wantData: marshallObj(t, usr),
		},
		{
			name: "someone else's profile is hidden", method: http.MethodGet, path: detPath(other.ID), token: usrToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "admin reads anyone", method: http.MethodGet, path: detPath(other.ID), token: adminToken,
			wantCode: http.StatusOK, wantData: marshallObj(t, other),
		},
		{
			name: "unknown ID", method: http.MethodGet, path: detPath(987654), token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "non-admin cannot change roles", method: http.MethodPut, path: detPath(usr.ID), token: usrToken,
			body:     marshallObj(t, map[string]interface{}{"roles": []string{user.RoleAdmin}}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "self rename", method: http.MethodPut, path: detPath(usr.ID), token: usrToken,
			body: marshallObj(t, map[string]string{"name": "Det Renamed"}), wantCode: http.StatusOK,
		},
		{
			name: "non-admin cannot delete", method: http.MethodDelete, path: detPath(usr.ID), token: usrToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "no self-delete, even for admins", method: http.MethodDelete, path: detPath(admin.ID), token: adminToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{name: "admin deletes", method: http.MethodDelete, path: detPath(other.ID), token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "self rename" {
				var updated user.User
				decodeBody(t, rec, &updated)
				if updated.Name != "Det Renamed" {
					t.Errorf("name = %q; want %q", updated.Name, "Det Renamed")
				}
			}
		})
	}

	if _, err := usrRepo.GetUserByID(other.ID); err != user.ErrNotFound {
		t.Errorf("expected user to be deleted; err %v", err)
	}
}

func Test_userApi_destroyMultiple(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Dm Admin", "dmadmin", "dmadmin@test.cd", "", []string{user.RoleAdmin}, true)
	usr1 := testutil.CreateUser(t, usrRepo, "Dm One", "dmuser1", "dmuser1@test.cd", "", nil, true)
	usr2 := testutil.CreateUser(t, usrRepo, "Dm Two", "dmuser2", "dmuser2@test.cd", "", nil, true)

	adminToken := getToken(t, admin)

	// no suicide
	path := fmt.Sprintf("/v1/users?id=%d&id=%d", usr1.ID, admin.ID)
	req, rec := newAuthRequest(http.MethodDelete, path, adminToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)}, rec)

	path = fmt.Sprintf("/v1/users?id=%d&id=%d", usr1.ID, usr2.ID)
	req, rec = newAuthRequest(http.MethodDelete, path, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	if _, err := usrRepo.GetUserByID(usr1.ID); err != user.ErrNotFound {
		t.Errorf("expected user to be deleted; err %v", err)
	}
}
