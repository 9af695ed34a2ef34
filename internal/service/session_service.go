package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	"github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/logger"
	"github.com/haierkeys/pin-notes-service/pkg/util"

	"go.uber.org/zap"
)

// SessionService 登录会话服务
// A session moves Unauthenticated -> Authenticated on SignIn and back on
// SignOut. Signed out tokens stay revoked until they would have expired.
type SessionService interface {
	// SignIn 校验用户名密码并签发会话
	SignIn(ctx context.Context, params *dto.SessionCreateRequest, clientIP string) (*domain.Session, error)

	// Resolve 根据令牌恢复会话，无效时返回 ErrInvalidSession
	Resolve(ctx context.Context, token string) (*domain.Session, error)

	// SignOut 注销令牌，返回未登录会话
	SignOut(ctx context.Context, token string) (*domain.Session, error)
}

type sessionService struct {
	users        map[string]string
	tokenManager app.TokenManager
	logger       *zap.Logger
	metrics      *Metrics
	now          func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(tokenManager app.TokenManager, logger *zap.Logger, metrics *Metrics, config *ServiceConfig) SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	users := map[string]string{}
	if config != nil {
		for name, hash := range config.Auth.Users {
			users[name] = hash
		}
	}
	return &sessionService{
		users:        users,
		tokenManager: tokenManager,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
		revoked:      make(map[string]time.Time),
	}
}

func (s *sessionService) SignIn(ctx context.Context, params *dto.SessionCreateRequest, clientIP string) (*domain.Session, error) {
	username := strings.TrimSpace(params.Username)
	hash, ok := s.users[username]
	if !ok || !util.CheckPasswordHash(hash, params.Password) {
		s.metrics.signIn(false)
		s.logger.Info("sign in rejected", zap.String(logger.FieldUser, username), zap.String("ip", clientIP))
		return nil, domain.ErrInvalidCredentials
	}

	token, entity, err := s.tokenManager.Generate(username, clientIP)
	if err != nil {
		return nil, err
	}
	s.metrics.signIn(true)
	s.logger.Info("signed in", zap.String(logger.FieldUser, username), zap.String("ip", clientIP))
	return toSession(token, entity), nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return domain.AnonymousSession(), domain.ErrInvalidSession
	}
	entity, err := s.tokenManager.Parse(token)
	if err != nil {
		return domain.AnonymousSession(), domain.ErrInvalidSession
	}
	if s.isRevoked(entity.ID) {
		return domain.AnonymousSession(), domain.ErrInvalidSession
	}
	if _, ok := s.users[entity.Username]; !ok {
		// 用户已从配置中移除
		return domain.AnonymousSession(), domain.ErrInvalidSession
	}
	return toSession(token, entity), nil
}

func (s *sessionService) SignOut(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.Resolve(ctx, token)
	if err != nil {
		return domain.AnonymousSession(), err
	}

	s.mu.Lock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[session.ID] = session.ExpiresAt
	s.mu.Unlock()

	s.logger.Info("signed out", zap.String(logger.FieldUser, session.Username))
	return domain.AnonymousSession(), nil
}

func (s *sessionService) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func toSession(token string, entity *app.UserEntity) *domain.Session {
	session := &domain.Session{
		State:    domain.Authenticated,
		ID:       entity.ID,
		Username: entity.Username,
		Token:    token,
	}
	if entity.IssuedAt != nil {
		session.IssuedAt = entity.IssuedAt.Time
	}
	if entity.ExpiresAt != nil {
		session.ExpiresAt = entity.ExpiresAt.Time
	}
	return session
}
