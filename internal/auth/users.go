package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmailTaken     = errors.New("user with this email already exists")
	ErrUsernameTaken  = errors.New("user with this username already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid credentials")
)

const bcryptCost = 12

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`

	passwordHash string
}

type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Repo struct {
	DB *pgxpool.Pool

	// Accounts registering with these credentials become admins.
	AdminEmail    string
	AdminUsername string
}

func (r *Repo) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return User{}, fmt.Errorf("%w: email, username and password are required", ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return User{}, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	if len(in.Username) < 3 {
		return User{}, fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	}

	email := strings.ToLower(in.Email)
	username := strings.ToLower(in.Username)

	var takenEmail string
	err := r.DB.QueryRow(ctx,
		`SELECT email FROM users WHERE email = $1 OR username = $2`, email, username).Scan(&takenEmail)
	if err == nil {
		if takenEmail == email {
			return User{}, ErrEmailTaken
		}
		return User{}, ErrUsernameTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsAdmin:   email == strings.ToLower(r.AdminEmail) || username == strings.ToLower(r.AdminUsername),
		CreatedAt: time.Now().UTC(),
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO users(id, email, username, password_hash, first_name, last_name, is_admin, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.Username, string(hash), u.FirstName, u.LastName, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Login accepts a username or an email, like the storefront's login form.
func (r *Repo) Login(ctx context.Context, username, email, password string) (User, error) {
	return login(ctx, r.getBy, username, email, password)
}

type userGetter func(ctx context.Context, field, value string) (User, error)

func login(ctx context.Context, get userGetter, username, email, password string) (User, error) {
	if (username == "" && email == "") || password == "" {
		return User{}, fmt.Errorf("%w: username/email and password are required", ErrInvalidInput)
	}

	var u User
	err := ErrUserNotFound
	if username != "" {
		u, err = get(ctx, "username", strings.ToLower(username))
	}
	if errors.Is(err, ErrUserNotFound) && email != "" {
		u, err = get(ctx, "email", strings.ToLower(email))
	}
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrBadCredentials
	}
	// anything else is an infrastructure failure, not a wrong password
	if err != nil {
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *Repo) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `UPDATE users SET password_hash=$2 WHERE id=$1`, userID, string(hash))
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) getBy(ctx context.Context, column, value string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, email, username, password_hash, first_name, last_name, is_admin, created_at
		FROM users WHERE `+column+` = $1`, value).
		Scan(&u.ID, &u.Email, &u.Username, &u.passwordHash, &u.FirstName, &u.LastName, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}
