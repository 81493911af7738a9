package service

import (
	"context"
	"testing"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUsersRequireAdmin(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	_, err := f.svc.Users.List(ctx, clerk, listview.State{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Users.Create(ctx, clerk, UserInput{Name: "x", Email: "x@app.com"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.Users.Delete(ctx, clerk, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateUserDefaults(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)

	u, err := f.svc.Users.Create(context.Background(), admin, UserInput{Name: " Sara ", Email: "sara@app.com"})
	require.NoError(t, err)

	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "Sara", u.Name)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Empty(t, u.Password, "returned users never carry the password")
	assert.Equal(t, "2024-01-17T15:04:05Z", u.CreatedAt)
	assert.Equal(t, "Administrateur", u.CreatedByName)
	require.NotNil(t, u.CreatedByID)
	assert.Equal(t, int64(1), *u.CreatedByID)

	stored := get[models.User](f, models.CollectionUsers)
	assert.Equal(t, "password123", stored[2].Password)
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	tests := []struct {
		name string
		in   UserInput
	}{
		{"bad email", UserInput{Name: "a", Email: "not-an-email"}},
		{"email with space", UserInput{Name: "a", Email: "a b@app.com"}},
		{"duplicate email other case", UserInput{Name: "a", Email: "ADMIN@app.com"}},
		{"unknown role", UserInput{Name: "a", Email: "a@app.com", Role: "Root"}},
		{"missing name", UserInput{Email: "a@app.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Users.Create(ctx, admin, tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Len(t, get[models.User](f, models.CollectionUsers), 2)
}

func TestAdminCannotDeleteOrDemoteThemselves(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	err := f.svc.Users.Delete(ctx, admin, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Users.Update(ctx, admin, admin.ID, UserInput{Name: "Boss", Email: admin.Email, Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	u, err := f.svc.Users.Update(ctx, admin, admin.ID, UserInput{Name: "Boss", Email: admin.Email})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = f.svc.Users.Update(ctx, admin, clerk.ID, UserInput{Name: "Promoted", Email: clerk.Email, Role: models.RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, f.svc.Users.Delete(ctx, admin, clerk.ID))
	assert.Len(t, get[models.User](f, models.CollectionUsers), 1)
}

func TestUpdateUserEmailMustStayUnique(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)

	_, err := f.svc.Users.Update(context.Background(), admin, clerk.ID, UserInput{Name: "x", Email: "Admin@App.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeletedUserIDIsNotReissued(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	u, err := f.svc.Users.Create(ctx, admin, UserInput{Name: "a", Email: "a@app.com"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Users.Delete(ctx, admin, u.ID))

	again, err := f.svc.Users.Create(ctx, admin, UserInput{Name: "b", Email: "b@app.com"})
	require.NoError(t, err)
	assert.Greater(t, again.ID, u.ID)
}

func TestHashedPasswords(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.HashPasswords = true })
	withShop(t, f)
	ctx := context.Background()

	_, err := f.svc.Users.Create(ctx, admin, UserInput{Name: "h", Email: "h@app.com", Password: "hunter22"})
	require.NoError(t, err)

	stored := get[models.User](f, models.CollectionUsers)[2]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter22")))

	_, err = f.svc.Auth.Login(ctx, "h@app.com", "hunter22", "")
	assert.NoError(t, err)
}

func TestUserListFacets(t *testing.T) {
	f := newFixture(t)
	withShop(t, f)
	ctx := context.Background()

	view, err := f.svc.Users.List(ctx, admin, listview.State{Filters: map[string]string{"from": "2024-01-01"}})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, admin.ID, view.Rows[0].ID)
	assert.Empty(t, view.Rows[0].Password)

	view, err = f.svc.Users.List(ctx, admin, listview.State{Filters: map[string]string{"to": "2023-11-20"}})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total, "the to bound includes the whole day")
	assert.Equal(t, clerk.ID, view.Rows[0].ID)

	view, err = f.svc.Users.List(ctx, admin, listview.State{Filters: map[string]string{"role": models.RoleUser}})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Total)
}
