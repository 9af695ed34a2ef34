package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrInvalidLinkToken 签名链接无效或已过期
var ErrInvalidLinkToken = errors.New("storage: invalid or expired link token")

const linkSubject = "blob-link"

// LinkSigner issues and verifies the signed links used by backends that
// cannot hand out provider URLs themselves (localfs, webdav). The link points
// back at this service, which streams the object after verifying the token.
type LinkSigner struct {
	secret  []byte
	baseURL string
	route   string
}

type linkClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// NewLinkSigner baseURL may be empty, in which case links are host relative.
func NewLinkSigner(secret, baseURL, route string) *LinkSigner {
	return &LinkSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		route:   route,
	}
}

// Sign 生成指定对象键的签名链接
func (s *LinkSigner) Sign(fileKey string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &linkClaims{
		Key: fileKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   linkSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "storage: sign link")
	}
	return fmt.Sprintf("%s%s?token=%s", s.baseURL, s.route, url.QueryEscape(token)), nil
}

// Verify 校验签名链接中的 token，返回对象键
func (s *LinkSigner) Verify(token string) (string, error) {
	claims := &linkClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithSubject(linkSubject), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Key == "" {
		return "", ErrInvalidLinkToken
	}
	return claims.Key, nil
}
