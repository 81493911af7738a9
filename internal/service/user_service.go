package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"techstore-admin/internal/listview"
	"techstore-admin/internal/models"
	"techstore-admin/internal/store"
	"techstore-admin/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts. Every operation requires an Admin actor.
type UserService struct {
	*base
}

// UserInput is the writable part of a user. An empty Password keeps the
// current one on update and falls back to the default password on create.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

func (s *UserService) requireAdmin(op string, actor models.User) error {
	if !actor.IsAdmin() {
		s.logger.Warn("Non admin actor refused", zap.String("op", op), zap.Int64("actor_id", actor.ID))
		return forbidden(op, "admin role required")
	}
	return nil
}

// List returns the users view with passwords stripped.
func (s *UserService) List(ctx context.Context, actor models.User, state listview.State) (listview.View[models.User], error) {
	ctx, span := util.StartSpan(ctx, "UserService.List")
	defer span.End()

	if err := s.requireAdmin("users.list", actor); err != nil {
		return listview.View[models.User]{}, err
	}

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	for i := range users {
		users[i] = users[i].Public()
	}
	return computeView(s.base, models.CollectionUsers, users, state, userSchema(s.opts.Locale)), nil
}

func (s *UserService) Get(ctx context.Context, actor models.User, id int64) (*models.User, error) {
	if err := s.requireAdmin("users.get", actor); err != nil {
		return nil, err
	}

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	i := indexOf(users, id, userID)
	if i < 0 {
		return nil, notFound("user", id)
	}
	u := users[i].Public()
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, actor models.User, in UserInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Create")
	defer span.End()

	const op = "users.create"
	if err := s.requireAdmin(op, actor); err != nil {
		return nil, err
	}

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	in, err := s.validate(op, users, 0, in)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Password == "" {
		in.Password = s.opts.DefaultPassword
	}
	password, err := s.encodePassword(in.Password)
	if err != nil {
		return nil, err
	}

	id, err := nextID(ctx, s.base, models.CollectionUsers, users, userID)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:            id,
		Email:         in.Email,
		Password:      password,
		Role:          in.Role,
		Name:          in.Name,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
		CreatedByID:   int64Ptr(actor.ID),
		CreatedByName: actor.Name,
	}
	users = append(users, user)

	if err := store.Write(ctx, s.store, models.CollectionUsers, users); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.Int64("user_id", id), zap.String("role", user.Role))
	s.collectionChanged(ctx, models.CollectionUsers, models.ActionCreated, id, &actor)

	out := user.Public()
	return &out, nil
}

// Update changes name, email, role and, when given, password. An actor
// cannot take the Admin role away from themselves.
func (s *UserService) Update(ctx context.Context, actor models.User, id int64, in UserInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Update")
	defer span.End()

	const op = "users.update"
	if err := s.requireAdmin(op, actor); err != nil {
		return nil, err
	}

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	i := indexOf(users, id, userID)
	if i < 0 {
		return nil, notFound("user", id)
	}

	in, err := s.validate(op, users, id, in)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = users[i].Role
	}
	if id == actor.ID && in.Role != models.RoleAdmin {
		return nil, forbidden(op, "you cannot change your own role")
	}

	users[i].Name = in.Name
	users[i].Email = in.Email
	users[i].Role = in.Role
	if in.Password != "" {
		password, err := s.encodePassword(in.Password)
		if err != nil {
			return nil, err
		}
		users[i].Password = password
	}

	if err := store.Write(ctx, s.store, models.CollectionUsers, users); err != nil {
		return nil, err
	}

	s.logger.Info("User updated", zap.Int64("user_id", id))
	s.collectionChanged(ctx, models.CollectionUsers, models.ActionUpdated, id, &actor)

	out := users[i].Public()
	return &out, nil
}

// Delete removes a user. An actor cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor models.User, id int64) error {
	ctx, span := util.StartSpan(ctx, "UserService.Delete")
	defer span.End()

	const op = "users.delete"
	if err := s.requireAdmin(op, actor); err != nil {
		return err
	}
	if id == actor.ID {
		return forbidden(op, "you cannot delete your own account")
	}

	users := store.Read[models.User](ctx, s.store, models.CollectionUsers)
	i := indexOf(users, id, userID)
	if i < 0 {
		return notFound("user", id)
	}
	users = append(users[:i], users[i+1:]...)

	if err := store.Write(ctx, s.store, models.CollectionUsers, users); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.Int64("user_id", id))
	s.collectionChanged(ctx, models.CollectionUsers, models.ActionDeleted, id, &actor)
	return nil
}

func (s *UserService) Export(ctx context.Context, actor models.User, state listview.State) (*Export, error) {
	view, err := s.List(ctx, actor, state)
	if err != nil {
		return nil, err
	}
	return userExport(view.Matched), nil
}

func (s *UserService) validate(op string, users []models.User, selfID int64, in UserInput) (UserInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		return in, invalid(op, "name is required")
	}
	if !ValidEmail(in.Email) {
		return in, invalid(op, "invalid email")
	}
	if in.Role != "" && !models.ValidRoles[in.Role] {
		return in, invalid(op, "invalid role %q", in.Role)
	}

	email := normalizeEmail(in.Email)
	for _, u := range users {
		if u.ID != selfID && normalizeEmail(u.Email) == email {
			return in, invalid(op, "email already in use")
		}
	}
	return in, nil
}

func (s *UserService) encodePassword(password string) (string, error) {
	if !s.opts.HashPasswords {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
