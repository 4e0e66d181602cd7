package http

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docstudio/internal/domain/model"
)

// DownloadTokenManager mints short-lived HS256 tokens that gate access
// to rendered artifacts. The object store URL never leaves the server
// unwrapped.
type DownloadTokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewDownloadTokenManager(secret string, ttl time.Duration) *DownloadTokenManager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DownloadTokenManager{secret: []byte(secret), ttl: ttl}
}

type downloadClaims struct {
	DocumentID string `json:"document_id"`
	Kind       string `json:"kind"`
	jwt.RegisteredClaims
}

func (m *DownloadTokenManager) Mint(documentID string, kind model.ArtifactKind) (string, error) {
	now := time.Now()
	claims := downloadClaims{
		DocumentID: documentID,
		Kind:       string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   "download",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *DownloadTokenManager) Verify(tok string) (documentID string, kind model.ArtifactKind, err error) {
	claims := &downloadClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid || claims.DocumentID == "" {
		return "", "", errors.New("invalid download token")
	}
	return claims.DocumentID, model.ArtifactKind(claims.Kind), nil
}
