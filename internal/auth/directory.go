// ABOUTME: Local identity provider: sign-up and login against a bcrypt credential table
// ABOUTME: The table is a JSON object kept under the users key of the key-value store

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/swavik-portal/internal/store"
)

// Credential errors. Messages are shown to the user as-is.
var (
	ErrMissingCredentials = errors.New("please fill in all fields")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrUserExists         = errors.New("username already taken, try a different one or login")
	ErrUnknownUser        = errors.New("account not found, please sign up first")
	ErrInvalidPassword    = errors.New("incorrect password, please try again")
)

// DefaultMinPasswordLength is the shortest password accepted.
const DefaultMinPasswordLength = 4

// dummyHash keeps Login timing uniform when the user does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// KeyValueStore is the persistence the directory needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// User is one entry in the credential table.
type User struct {
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Directory validates and registers portal users.
type Directory struct {
	mu        sync.Mutex
	kv        KeyValueStore
	minLength int
	logger    *slog.Logger
}

// NewDirectory creates a Directory over kv. A minLength below 1 selects
// DefaultMinPasswordLength.
func NewDirectory(kv KeyValueStore, minLength int, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	if minLength < 1 {
		minLength = DefaultMinPasswordLength
	}
	return &Directory{
		kv:        kv,
		minLength: minLength,
		logger:    logger.With("component", "auth"),
	}
}

// SignUp registers username with password.
func (d *Directory) SignUp(ctx context.Context, username, password string) error {
	username, err := d.validate(username, password)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	users[username] = User{PasswordHash: string(hash), CreatedAt: time.Now().UTC()}

	if err := d.save(ctx, users); err != nil {
		return err
	}

	d.logger.Info("user signed up", "username", username)
	return nil
}

// Login checks username and password. It returns nil when they match.
func (d *Directory) Login(ctx context.Context, username, password string) error {
	username, err := d.validate(username, password)
	if err != nil {
		return err
	}

	d.mu.Lock()
	users, err := d.load(ctx)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	user, ok := users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return ErrUnknownUser
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		d.logger.Debug("login rejected", "username", username)
		return ErrInvalidPassword
	}

	d.logger.Debug("login accepted", "username", username)
	return nil
}

// Usernames lists registered users in order.
func (d *Directory) Usernames(ctx context.Context) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *Directory) validate(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if len([]rune(password)) < d.minLength {
		return "", fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooShort, d.minLength)
	}
	return username, nil
}

// load reads the credential table. A missing table is empty.
func (d *Directory) load(ctx context.Context) (map[string]User, error) {
	data, err := d.kv.Get(ctx, store.KeyUsers)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}

	users := map[string]User{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}
	return users, nil
}

func (d *Directory) save(ctx context.Context, users map[string]User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}
	if err := d.kv.Put(ctx, store.KeyUsers, data); err != nil {
		return fmt.Errorf("saving users: %w", err)
	}
	return nil
}
