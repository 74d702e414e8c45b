package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an upload token does not verify or does not match the key.
var ErrInvalidToken = errors.New("invalid upload token")

// DefaultUploadTTL is how long a signed upload URL stays valid.
const DefaultUploadTTL = 15 * time.Minute

// UploadClaims scope a token to one object key and content type.
type UploadClaims struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	jwt.RegisteredClaims
}

// Signer issues and verifies upload tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a signer using HS256 with secret. A non-positive ttl uses DefaultUploadTTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token that allows uploading key with contentType.
func (s *Signer) Sign(key, contentType string) (string, error) {
	now := s.now()
	claims := UploadClaims{
		Key:         key,
		ContentType: contentType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Subject:   "upload",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload token: %w", err)
	}
	return signed, nil
}

// Verify checks tokenString and that it was issued for key.
func (s *Signer) Verify(tokenString, key string) (*UploadClaims, error) {
	claims := &UploadClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Key != key {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ObjectKey joins bucket, path and file name into a clean key.
func ObjectKey(bucket, dir, fileName string) (string, error) {
	if strings.Contains(fileName, "/") {
		return "", ErrInvalidKey
	}
	return CleanKey(bucket + "/" + dir + "/" + fileName)
}

// SignedUpload is a ready-to-use upload target.
type SignedUpload struct {
	Key       string
	Token     string
	UploadURL string
	PublicURL string
}

// SignedUploadURL returns the upload and public URLs for a new object under baseURL.
func (s *Signer) SignedUploadURL(baseURL, bucket, dir, fileName, contentType string) (*SignedUpload, error) {
	key, err := ObjectKey(bucket, dir, fileName)
	if err != nil {
		return nil, err
	}
	token, err := s.Sign(key, contentType)
	if err != nil {
		return nil, err
	}

	public := ObjectURL(baseURL, key)
	return &SignedUpload{
		Key:       key,
		Token:     token,
		UploadURL: public + "?token=" + url.QueryEscape(token),
		PublicURL: public,
	}, nil
}

// ObjectURL is where the server serves key.
func ObjectURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(baseURL, "/") + "/storage/objects/" + strings.Join(segments, "/")
}
