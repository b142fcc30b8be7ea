package services

import (
	"context"
	"crypto/ed25519"
	"errors"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-jose/go-jose/v3"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zynexa/go-zynexa-server/global"
	"github.com/zynexa/go-zynexa-server/metrics"
	"github.com/zynexa/go-zynexa-server/repository"
	"github.com/zynexa/go-zynexa-server/types"
	"github.com/zynexa/go-zynexa-server/util"
)

const sessionKeyPrefix = "zynexa:session:"

// SessionStore persists sessions by id. Get returns types.ErrNotFound for missing or expired sessions.
type SessionStore interface {
	Save(ctx context.Context, session *types.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*types.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore stores cbor encoded sessions with a TTL
type RedisSessionStore struct {
	env *types.Environment
}

func NewRedisSessionStore(env *types.Environment) *RedisSessionStore {
	return &RedisSessionStore{env: env}
}

func (s *RedisSessionStore) Save(ctx context.Context, session *types.Session, ttl time.Duration) error {
	encoded, err := cbor.Marshal(session)
	if err != nil {
		return err
	}
	return s.env.RedisClient.Set(ctx, sessionKeyPrefix+session.ID, encoded, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	val, err := s.env.RedisClient.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	var session types.Session
	if err := cbor.Unmarshal(val, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.env.RedisClient.Del(ctx, sessionKeyPrefix+id).Err()
}

type memorySession struct {
	session   types.Session
	expiresAt time.Time
}

// MemorySessionStore is used in tests and when redis is not configured
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *types.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = memorySession{session: *session, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	if time.Now().After(ms.expiresAt) {
		delete(s.sessions, id)
		return nil, types.ErrNotFound
	}
	session := ms.session
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// SessionService binds a session to an identity after a signed login challenge.
// The client holds a JWS (EdDSA) over the session id; session state lives in the store.
type SessionService struct {
	store           SessionStore
	repo            repository.Store
	privateKey      ed25519.PrivateKey
	publicKey       ed25519.PublicKey
	ttl             time.Duration
	challengeMaxAge time.Duration
	now             func() time.Time
}

func NewSessionService(store SessionStore, repo repository.Store, privateKey ed25519.PrivateKey) *SessionService {
	return &SessionService{
		store:           store,
		repo:            repo,
		privateKey:      privateKey,
		publicKey:       privateKey.Public().(ed25519.PublicKey),
		ttl:             time.Duration(global.Conf.Session.TtlHours) * time.Hour,
		challengeMaxAge: time.Duration(global.Conf.Session.LoginChallengeMaxAgeSeconds) * time.Second,
		now:             time.Now,
	}
}

func (s *SessionService) TTL() time.Duration {
	if s.ttl <= 0 {
		return 24 * time.Hour
	}
	return s.ttl
}

// Login verifies the signed challenge and creates a session for an existing identity
func (s *SessionService) Login(ctx context.Context, publicKey, challenge, signature string) (*types.Session, *types.Identity, error) {
	if !util.VerifyEncoded(challenge, signature, publicKey) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_signature").Inc()
		return nil, nil, types.ErrInvalidSignature
	}
	if err := s.checkChallengeAge(challenge); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_challenge").Inc()
		return nil, nil, err
	}

	identity, err := s.repo.GetIdentity(ctx, publicKey)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, nil, err
	}

	session := &types.Session{
		ID:        uuid.NewString(),
		PublicKey: publicKey,
		Created:   s.now().UTC().UnixMilli(),
	}
	if err := s.store.Save(ctx, session, s.TTL()); err != nil {
		level.Error(global.Logger).Log("msg", "failed to store session", "publicKey", util.ShortKey(publicKey), "err", err)
		return nil, nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return session, identity, nil
}

// checkChallengeAge is only active when session.loginChallengeMaxAgeSeconds > 0
func (s *SessionService) checkChallengeAge(challenge string) error {
	if s.challengeMaxAge <= 0 {
		return nil
	}
	ts, ok := util.ParseLoginMessage(challenge)
	if !ok {
		return types.NewValidationError("invalid login challenge")
	}
	age := s.now().Sub(time.UnixMilli(ts))
	if age < 0 || age > s.challengeMaxAge {
		return types.NewValidationError("login challenge expired")
	}
	return nil
}

// Token returns the compact JWS handed to the client as the session cookie
func (s *SessionService) Token(session *types.Session) (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.EdDSA, Key: s.privateKey}, nil)
	if err != nil {
		return "", err
	}
	object, err := signer.Sign([]byte(session.ID))
	if err != nil {
		return "", err
	}
	return object.CompactSerialize()
}

func (s *SessionService) sessionID(token string) (string, error) {
	if token == "" {
		return "", types.ErrUnauthenticated
	}
	object, err := jose.ParseSigned(token)
	if err != nil {
		return "", types.ErrUnauthenticated
	}
	payload, err := object.Verify(s.publicKey)
	if err != nil {
		return "", types.ErrUnauthenticated
	}
	return string(payload), nil
}

// Session resolves a token to its session (ErrUnauthenticated when missing, forged or expired)
func (s *SessionService) Session(ctx context.Context, token string) (*types.Session, error) {
	id, err := s.sessionID(token)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}
	return session, nil
}

// CurrentIdentity re-reads the identity bound to the session. A session whose identity disappeared is destroyed.
func (s *SessionService) CurrentIdentity(ctx context.Context, token string) (*types.Identity, error) {
	session, err := s.Session(ctx, token)
	if err != nil {
		return nil, err
	}
	identity, err := s.repo.GetIdentity(ctx, session.PublicKey)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			level.Warn(global.Logger).Log("msg", "session identity missing, destroying session", "publicKey", util.ShortKey(session.PublicKey))
			if dErr := s.store.Delete(ctx, session.ID); dErr != nil {
				level.Error(global.Logger).Log("msg", "failed to delete session", "err", dErr)
			}
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}
	return identity, nil
}

// Logout destroys the session. Unknown or invalid tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	id, err := s.sessionID(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, id)
}
