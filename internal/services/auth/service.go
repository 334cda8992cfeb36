package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quincybot/rosterquiz/internal/dependencies/clock"
	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

const (
	minNicknameLen = 3
	maxNicknameLen = 15
	minPasswordLen = 3
)

var nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9а-яА-ЯёЁ_-]+$`)

// Session represents an authenticated session
type Session struct {
	Token     string
	Nickname  model.Nickname
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles account registration, login and session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// ValidateNickname checks the nickname length and character rules
func ValidateNickname(nickname model.Nickname) error {
	n := string(nickname)
	if len([]rune(n)) < minNicknameLen || len([]rune(n)) > maxNicknameLen {
		return model.ErrInvalidNickname
	}
	if !nicknamePattern.MatchString(n) {
		return model.ErrInvalidNickname
	}
	return nil
}

// Register creates a password-protected account and opens a session
func (s *Service) Register(ctx context.Context, nickname model.Nickname, password string) (*Session, error) {
	if err := ValidateNickname(nickname); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, model.ErrInvalidPassword
	}

	_, err := s.storage.GetUser(ctx, nickname)
	if err == nil {
		return nil, model.ErrNicknameTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(nickname, s.clock.Now())
	user.PasswordHash = string(hash)

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return s.createSession(user)
}

// Login authenticates a registered account and opens a session
func (s *Service) Login(ctx context.Context, nickname model.Nickname, password string) (*Session, error) {
	user, err := s.storage.GetUser(ctx, nickname)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, model.ErrNoPasswordSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(user)
}

// Guest opens a session for a nickname without a password. The rating
// record is created on first use so guests still appear on the
// leaderboard. A nickname that already has a password requires Login.
func (s *Service) Guest(ctx context.Context, nickname model.Nickname) (*Session, error) {
	if err := ValidateNickname(nickname); err != nil {
		return nil, err
	}

	user, err := s.EnsureUser(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash != "" {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(user)
}

// EnsureUser fetches a rating record, creating it if absent
func (s *Service) EnsureUser(ctx context.Context, nickname model.Nickname) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, nickname)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	user = model.NewUser(nickname, s.clock.Now())
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureBot fetches the bot's rating record, creating it and setting
// the bot flag as needed. Bot accounts never appear on the leaderboard.
func (s *Service) EnsureBot(ctx context.Context, nickname model.Nickname) (*model.User, error) {
	user, err := s.EnsureUser(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if !user.IsBot {
		user.IsBot = true
		if err := s.storage.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ValidateSession checks a token and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) createSession(user *model.User) (*Session, error) {
	token := generateToken("sess_")
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		Nickname:  user.Nickname,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session, nil
}

func generateToken(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
