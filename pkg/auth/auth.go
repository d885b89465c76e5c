package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// AdminSubject is the subject of every token issued by the shared-password login
const AdminSubject = "admin"

var jwtAlgorithm = jwt.SigningMethodHS256

// ErrInvalidCredentials is returned for a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Authenticator checks the shared admin password and issues tokens
type Authenticator struct {
	secret       []byte
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator builds an Authenticator. When passwordHash is empty the
// plain password is hashed once here so it is never compared in the clear.
func NewAuthenticator(secret, password, passwordHash string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if passwordHash == "" {
		if password == "" {
			return nil, errors.New("admin password is empty")
		}
		h, err := HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		passwordHash = h
	}
	return &Authenticator{
		secret:       []byte(secret),
		passwordHash: passwordHash,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Login exchanges the shared password for a signed token
func (a *Authenticator) Login(password string) (string, error) {
	if !CheckPasswordHash(password, a.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return a.CreateToken(AdminSubject)
}

// CreateToken creates a new JWT token for a user
func (a *Authenticator) CreateToken(username string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.secret)
}

// VerifyToken verifies a JWT token
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
