package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagboard/internal/backend"
	"github.com/tagboard/internal/backend/fakebackend"
)

func newTestClient(t *testing.T) (*backend.Client, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL+fakebackend.PathPrefix, 5*time.Second)
	return client, fake
}

func loggedIn(t *testing.T, client *backend.Client) context.Context {
	t.Helper()
	ctx := backend.WithCredentials(context.Background(), backend.NewCredentials(""))
	_, err := client.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	return ctx
}

func TestListTagsReturnsNilForNullBody(t *testing.T) {
	client, _ := newTestClient(t)

	tags, err := client.ListTags(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tags)
}

func TestCreateTagRequiresSession(t *testing.T) {
	client, _ := newTestClient(t)

	err := client.CreateTag(context.Background(), backend.Tag{Name: "Go"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrUnauthorized))
}

func TestCreateTagConflict(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SeedTag(backend.Tag{Name: "Go"})
	ctx := loggedIn(t, client)

	err := client.CreateTag(ctx, backend.Tag{Name: "Go"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrConflict))
	assert.Len(t, fake.Tags(), 1)
}

func TestPatchTagSendsExplicitNullCategory(t *testing.T) {
	client, fake := newTestClient(t)
	categoryID := fake.Categories()[0].ID
	fake.SeedTag(backend.Tag{Name: "Go", Category: &categoryID})
	ctx := loggedIn(t, client)

	require.NoError(t, client.RemoveTagFromCategory(ctx, "Go"))

	tags := fake.Tags()
	require.Len(t, tags, 1)
	assert.Nil(t, tags[0].Category)
}

func TestTagPatchMarshalOnlySetFields(t *testing.T) {
	order := 3
	body, err := json.Marshal(backend.TagPatch{Order: &order})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Order":3}`, string(body))

	body, err = json.Marshal(backend.TagPatch{ClearCategory: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Category":null}`, string(body))
}

func TestTagNamesAreEscapedInPath(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SeedTag(backend.Tag{Name: "CI/CD"})
	ctx := loggedIn(t, client)

	require.NoError(t, client.MoveTag(ctx, "CI/CD", 7))
	assert.Equal(t, 7, fake.Tags()[0].Order)
}

func TestSearchWebsitesPassesLiteralNames(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SeedSite(backend.Website{URL: "http://a.example", Tags: []string{"中文", "搜索", "其他"}, Title: "A"})
	fake.SeedSite(backend.Website{URL: "http://b.example", Tags: []string{"中文"}, Title: "B"})

	sites, err := client.SearchWebsites(context.Background(), []string{"中文", "搜索"})
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "A", sites[0].Title)
	assert.Equal(t, [][]string{{"中文", "搜索"}}, fake.Searches())
}

func TestCredentialsFollowLoginAndLogout(t *testing.T) {
	client, _ := newTestClient(t)
	creds := backend.NewCredentials("")
	ctx := backend.WithCredentials(context.Background(), creds)

	_, err := client.Auth(ctx)
	assert.True(t, errors.Is(err, backend.ErrUnauthorized))

	user, err := client.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, backend.RoleAdmin, user.Role)
	assert.False(t, creds.Empty())
	assert.True(t, creds.Changed())

	state, err := client.Auth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", state.User)

	replayed := backend.NewCredentials(creds.Header())
	state, err = client.Auth(backend.WithCredentials(context.Background(), replayed))
	require.NoError(t, err)
	assert.Equal(t, "admin", state.Role)

	require.NoError(t, client.Logout(ctx))
	assert.True(t, creds.Empty())
}

func TestRequestIDHeader(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL, time.Second)
	_, err := client.ListCategories(backend.WithRequestID(context.Background(), "req-1"))
	require.NoError(t, err)
	assert.Equal(t, "req-1", seen)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw  string
		want backend.Role
		ok   bool
	}{
		{"0", backend.RolePlayer, true},
		{"2", backend.RoleAdmin, true},
		{"RoleManager", backend.RoleManager, true},
		{"admin", backend.RoleAdmin, true},
		{"7", backend.Role(7), false},
		{"owner", backend.RolePlayer, false},
	}
	for _, tt := range tests {
		got, ok := backend.ParseRole(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
	assert.Equal(t, "RoleAdmin", backend.RoleAdmin.String())
}

func TestLoginErrorsAreClassified(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrBadRequest))

	_, err = client.Login(context.Background(), "nobody", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}
