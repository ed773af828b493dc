// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/session"
	"github.com/tomtom215/letterdesk/internal/validation"
)

var errRemote = errors.New("remote rejected")

// fakeAPI counts calls per method. Methods not exercised by a test return
// zero values.
type fakeAPI struct {
	calls     map[string]int
	err       error
	logoutErr error
	me        *models.Admin
	lastBan   string
	lastAdmin client.AdminCreate
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}, me: &models.Admin{ID: "a1", Username: "ops", Role: models.RoleAdmin}}
}

func (f *fakeAPI) hit(name string) error {
	f.calls[name]++
	return f.err
}

func (f *fakeAPI) ConsoleDashboard(context.Context) (*models.ConsoleDashboard, error) {
	d := &models.ConsoleDashboard{RecentUsers: []models.User{{ID: "U1"}}, RecentLetters: []models.Letter{{ID: "L1"}}}
	d.Users.Total = f.calls["ConsoleDashboard"] + 1
	return d, f.hit("ConsoleDashboard")
}

func (f *fakeAPI) ListLetters(context.Context, models.LetterQuery) (*client.Page[models.Letter], error) {
	return &client.Page[models.Letter]{Items: []models.Letter{{ID: "L1"}}}, f.hit("ListLetters")
}
func (f *fakeAPI) GetLetter(_ context.Context, id string) (*models.Letter, error) {
	return &models.Letter{ID: id}, f.hit("GetLetter")
}
func (f *fakeAPI) UpdateLetter(_ context.Context, id string, _ client.LetterPatch) (*models.Letter, error) {
	return &models.Letter{ID: id}, f.hit("UpdateLetter")
}
func (f *fakeAPI) UpdateLetterStatus(_ context.Context, id, status, _ string) (*models.Letter, error) {
	return &models.Letter{ID: id, Status: status}, f.hit("UpdateLetterStatus")
}
func (f *fakeAPI) DeleteLetter(context.Context, string) error { return f.hit("DeleteLetter") }

func (f *fakeAPI) ListUsers(context.Context, models.ListQuery) (*client.Page[models.User], error) {
	return &client.Page[models.User]{}, f.hit("ListUsers")
}
func (f *fakeAPI) SearchUsers(context.Context, string, int) ([]models.User, error) {
	return nil, f.hit("SearchUsers")
}
func (f *fakeAPI) GetUser(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id}, f.hit("GetUser")
}
func (f *fakeAPI) GetUserDetail(_ context.Context, id string) (*models.UserDetail, error) {
	return &models.UserDetail{User: models.User{ID: id}, Stats: models.UserStats{TotalLetters: 3}}, f.hit("GetUserDetail")
}
func (f *fakeAPI) GetUserStats(context.Context, string) (*models.UserStats, error) {
	return &models.UserStats{TotalLetters: 3, TotalLikes: 7}, f.hit("GetUserStats")
}
func (f *fakeAPI) ListUserLetters(_ context.Context, id string, _ models.ListQuery) (*client.Page[models.Letter], error) {
	return &client.Page[models.Letter]{Items: []models.Letter{{ID: "L1", UserID: id}}}, f.hit("ListUserLetters")
}
func (f *fakeAPI) UpdateUser(_ context.Context, id string, _ client.UserPatch) (*models.User, error) {
	return &models.User{ID: id}, f.hit("UpdateUser")
}
func (f *fakeAPI) BanUser(_ context.Context, id, reason string) (*models.User, error) {
	f.lastBan = reason
	return &models.User{ID: id, Status: "banned"}, f.hit("BanUser")
}
func (f *fakeAPI) UnbanUser(_ context.Context, id string) (*models.User, error) {
	return &models.User{ID: id}, f.hit("UnbanUser")
}
func (f *fakeAPI) DeleteUser(context.Context, string) error { return f.hit("DeleteUser") }

func (f *fakeAPI) ListAdmins(context.Context, models.AdminQuery) (*client.Page[models.Admin], error) {
	return &client.Page[models.Admin]{}, f.hit("ListAdmins")
}
func (f *fakeAPI) GetAdmin(_ context.Context, id string) (*models.Admin, error) {
	return &models.Admin{ID: id}, f.hit("GetAdmin")
}
func (f *fakeAPI) CreateAdmin(_ context.Context, in client.AdminCreate) (*models.Admin, error) {
	f.lastAdmin = in
	return &models.Admin{ID: "a9", Username: in.Username}, f.hit("CreateAdmin")
}
func (f *fakeAPI) UpdateAdmin(_ context.Context, id string, _ client.AdminPatch) (*models.Admin, error) {
	return &models.Admin{ID: id}, f.hit("UpdateAdmin")
}
func (f *fakeAPI) DeleteAdmin(context.Context, string) error { return f.hit("DeleteAdmin") }

func (f *fakeAPI) Login(context.Context, string, string) (*client.LoginResult, error) {
	if err := f.hit("Login"); err != nil {
		return nil, err
	}
	return &client.LoginResult{Token: "tok", Admin: f.me}, nil
}
func (f *fakeAPI) Logout(context.Context) error {
	f.calls["Logout"]++
	return f.logoutErr
}
func (f *fakeAPI) Me(context.Context) (*models.Admin, error) {
	return f.me, f.hit("Me")
}
func (f *fakeAPI) ChangePassword(context.Context, string, string) error {
	return f.hit("ChangePassword")
}

type fixture struct {
	svc   *Service
	api   *fakeAPI
	store *cache.MemoryStore
	sess  *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	api := newFakeAPI()
	sess := session.New(nil, nil)
	svc := NewService(api, store, cache.NewDispatcher(store, cache.DefaultInvalidationTable()), sess, 0)
	return &fixture{svc: svc, api: api, store: store, sess: sess}
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	if _, err := f.svc.Login(context.Background(), Credentials{Username: "ops", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

// ===================================================================================================
// Cached reads and invalidation
// ===================================================================================================

func TestLetters_CacheAndInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := models.LetterQuery{ListQuery: models.ListQuery{Page: 1, Limit: 10}}

	for i := 0; i < 2; i++ {
		if _, err := f.svc.ListLetters(ctx, q); err != nil {
			t.Fatal(err)
		}
	}
	if f.api.calls["ListLetters"] != 1 {
		t.Fatalf("list calls = %d, want 1 (cached)", f.api.calls["ListLetters"])
	}

	if _, err := f.svc.UpdateLetterStatus(ctx, "L1", LetterStatusChange{Status: "hidden", Reason: "spam"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ListLetters(ctx, q); err != nil {
		t.Fatal(err)
	}
	if f.api.calls["ListLetters"] != 2 {
		t.Errorf("list calls = %d, want 2 after status change", f.api.calls["ListLetters"])
	}
}

func TestLetters_FailedMutationKeepsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.GetLetter(ctx, "L1")
	f.api.err = errRemote
	if err := f.svc.DeleteLetter(ctx, "L1"); !errors.Is(err, errRemote) {
		t.Fatalf("DeleteLetter() error = %v", err)
	}
	f.api.err = nil
	_, _ = f.svc.GetLetter(ctx, "L1")
	if f.api.calls["GetLetter"] != 1 {
		t.Errorf("failed delete invalidated the cache: GetLetter calls = %d", f.api.calls["GetLetter"])
	}
}

func TestLetters_StatusValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateLetterStatus(context.Background(), "L1", LetterStatusChange{Status: "archived"})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) || !verr.HasField("Status") {
		t.Fatalf("expected Status validation error, got %v", err)
	}
	if f.api.calls["UpdateLetterStatus"] != 0 {
		t.Error("invalid status reached the API")
	}
}

func TestUsers_BanRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.BanUser(ctx, "U1", BanRequest{}); err == nil {
		t.Fatal("ban without reason accepted")
	}
	if _, err := f.svc.BanUser(ctx, "U1", BanRequest{Reason: "abuse"}); err != nil {
		t.Fatal(err)
	}
	if f.api.lastBan != "abuse" {
		t.Errorf("reason = %q", f.api.lastBan)
	}
}

func TestUsers_DeleteInvalidatesLetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.ListLetters(ctx, models.LetterQuery{})
	_, _ = f.svc.GetUser(ctx, "U1")
	if err := f.svc.DeleteUser(ctx, "U1"); err != nil {
		t.Fatal(err)
	}
	_, _ = f.svc.ListLetters(ctx, models.LetterQuery{})
	_, _ = f.svc.GetUser(ctx, "U1")
	if f.api.calls["ListLetters"] != 2 || f.api.calls["GetUser"] != 2 {
		t.Errorf("calls = %v, want letters and users refetched", f.api.calls)
	}
}

func TestOverview_CachedUntilLetterOrUserChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := f.svc.Overview(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if d.Users.Total != 1 || len(d.RecentLetters) != 1 {
			t.Errorf("overview = %+v", d)
		}
	}
	if f.api.calls["ConsoleDashboard"] != 1 {
		t.Fatalf("dashboard calls = %d, want 1 (cached)", f.api.calls["ConsoleDashboard"])
	}

	mutations := []struct {
		name string
		run  func() error
	}{
		{"ban", func() error { _, err := f.svc.BanUser(ctx, "U1", BanRequest{Reason: "abuse"}); return err }},
		{"hide letter", func() error {
			_, err := f.svc.UpdateLetterStatus(ctx, "L1", LetterStatusChange{Status: "hidden", Reason: "spam"})
			return err
		}},
	}
	for i, m := range mutations {
		if err := m.run(); err != nil {
			t.Fatalf("%s: %v", m.name, err)
		}
		d, err := f.svc.Overview(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if want := i + 2; d.Users.Total != want {
			t.Errorf("after %s: overview generation %d, want %d", m.name, d.Users.Total, want)
		}
	}
}

func TestUsers_DetailStatsAndLetters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := models.ListQuery{Page: 1, Limit: 10}

	for i := 0; i < 2; i++ {
		d, err := f.svc.GetUserDetail(ctx, "U1")
		if err != nil || d.ID != "U1" || d.Stats.TotalLetters != 3 {
			t.Fatalf("GetUserDetail = %+v, %v", d, err)
		}
		st, err := f.svc.GetUserStats(ctx, "U1")
		if err != nil || st.TotalLikes != 7 {
			t.Fatalf("GetUserStats = %+v, %v", st, err)
		}
		page, err := f.svc.ListUserLetters(ctx, "U1", q)
		if err != nil || len(page.Items) != 1 || page.Items[0].UserID != "U1" {
			t.Fatalf("ListUserLetters = %+v, %v", page, err)
		}
	}
	for _, m := range []string{"GetUserDetail", "GetUserStats", "ListUserLetters"} {
		if f.api.calls[m] != 1 {
			t.Errorf("%s calls = %d, want 1 (cached)", m, f.api.calls[m])
		}
	}

	if err := f.svc.DeleteLetter(ctx, "L1"); err != nil {
		t.Fatal(err)
	}
	_, _ = f.svc.ListUserLetters(ctx, "U1", q)
	_, _ = f.svc.GetUserStats(ctx, "U1")
	if f.api.calls["ListUserLetters"] != 2 || f.api.calls["GetUserStats"] != 2 {
		t.Errorf("after letter delete: letters %d stats %d, want refetches",
			f.api.calls["ListUserLetters"], f.api.calls["GetUserStats"])
	}
}

func TestUsers_SearchEmptyText(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.SearchUsers(context.Background(), "", 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("SearchUsers(\"\") = %v, %v", got, err)
	}
	if f.api.calls["SearchUsers"] != 0 {
		t.Error("empty search reached the API")
	}
}

func TestAdmins_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateAdmin(ctx, NewAdmin{Username: "x", Password: "short", Name: "X"}); err == nil {
		t.Fatal("invalid admin accepted")
	}

	in := NewAdmin{Username: "kim", Password: "long-enough", Name: "Kim", Role: models.RoleManager}
	if _, err := f.svc.CreateAdmin(ctx, in); err != nil {
		t.Fatal(err)
	}
	if f.api.lastAdmin.Username != "kim" || f.api.lastAdmin.Role != models.RoleManager {
		t.Errorf("create body = %+v", f.api.lastAdmin)
	}
}

func TestAdmins_CannotDeleteSelf(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	if err := f.svc.DeleteAdmin(context.Background(), "a1"); !errors.Is(err, ErrDeleteSelf) {
		t.Fatalf("DeleteAdmin(self) error = %v", err)
	}
	if err := f.svc.DeleteAdmin(context.Background(), "a2"); err != nil {
		t.Fatal(err)
	}
}

// ===================================================================================================
// Auth
// ===================================================================================================

func TestLogin_EstablishesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, Credentials{Username: "ops"}); err == nil {
		t.Fatal("login without password accepted")
	}

	admin, err := f.svc.Login(ctx, Credentials{Username: "ops", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if admin.ID != "a1" || f.sess.Token() != "tok" {
		t.Errorf("admin = %+v, token = %q", admin, f.sess.Token())
	}
}

func TestLogin_FailureLeavesSessionEmpty(t *testing.T) {
	f := newFixture(t)
	f.api.err = errRemote
	if _, err := f.svc.Login(context.Background(), Credentials{Username: "ops", Password: "bad"}); !errors.Is(err, errRemote) {
		t.Fatalf("Login() error = %v", err)
	}
	if f.sess.IsAuthenticated() {
		t.Error("failed login established a session")
	}
}

func TestLogout_ClearsEvenWhenRemoteFails(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	_, _ = f.svc.ListAdmins(ctx, models.AdminQuery{})
	f.api.logoutErr = errRemote
	if err := f.svc.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if f.sess.IsAuthenticated() {
		t.Error("session survived logout")
	}
	if f.store.Len() != 0 {
		t.Errorf("cache holds %d entries after logout", f.store.Len())
	}
}

func TestMe_CachedAndRequiresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Me(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Me() without session error = %v", err)
	}

	f.signIn(t)
	for i := 0; i < 2; i++ {
		if _, err := f.svc.Me(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if f.api.calls["Me"] != 1 {
		t.Errorf("Me calls = %d, want 1", f.api.calls["Me"])
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, PasswordChange{Current: "a", Next: "bbbbbbbb"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	f.signIn(t)
	if err := f.svc.ChangePassword(ctx, PasswordChange{Current: "same-password", Next: "same-password"}); err == nil {
		t.Error("unchanged password accepted")
	}
	if err := f.svc.ChangePassword(ctx, PasswordChange{Current: "old", Next: "new-password"}); err != nil {
		t.Fatal(err)
	}
	if f.api.calls["ChangePassword"] != 1 {
		t.Errorf("ChangePassword calls = %d", f.api.calls["ChangePassword"])
	}
}

func TestUnauthorizedHookDropsCache(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	_, _ = f.svc.ListUsers(ctx, models.ListQuery{})
	_, _ = f.svc.Me(ctx)
	if f.store.Len() == 0 {
		t.Fatal("nothing cached")
	}

	f.sess.HandleUnauthorized(ctx, f.sess.Token())
	if f.store.Len() != 0 {
		t.Errorf("cache holds %d entries after 401", f.store.Len())
	}
}
