package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdobak/go-xerrors"
	"golang.org/x/crypto/bcrypt"

	"github.com/martinkb/blog/internal/utils/collectionutils"
	"github.com/martinkb/blog/internal/web"
)

const (
	PrincipalCtxKey = "principal_id"

	bcryptCost = 12
)

var (
	NotAuthenticatedPrincipal = xerrors.Message("Not authenticated principal")
	InvalidToken              = xerrors.Message("Invalid token")
)

func HashPassword(plainTextPassword string) ([]byte, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcryptCost)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return hashedPassword, nil
}

func IsPasswordMatch(hashedPassword []byte, plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hashedPassword, []byte(plainTextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, xerrors.New(err)
	}

	return true, nil
}

type verifiedToken struct {
	userID    int64
	expiresAt time.Time
}

type Auth struct {
	secret   []byte
	tokenTTL time.Duration

	// verified caches principal ids for tokens that already passed signature
	// verification, keyed by the raw token string.
	verified collectionutils.SafeMap[string, verifiedToken]
}

func New(secret string, tokenTTL time.Duration) *Auth {
	return &Auth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// NewToken issues a signed token for the given user. The subject is the
// stringified user id, so authentication never needs a database lookup.
func (auth *Auth) NewToken(userID int64) (string, error) {
	now := time.Now()
	claim := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(auth.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	signedString, err := token.SignedString(auth.secret)
	if err != nil {
		return "", xerrors.New(err)
	}

	return signedString, nil
}

// Authenticate verifies the token and returns the principal user id.
func (auth *Auth) Authenticate(tokenString string) (int64, error) {
	if cached, ok := auth.verified.Load(tokenString); ok {
		if time.Now().Before(cached.expiresAt) {
			return cached.userID, nil
		}
		auth.verified.Delete(tokenString)
		return 0, xerrors.New(InvalidToken)
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.New("unexpected signing method")
		}
		return auth.secret, nil
	})

	if err != nil {
		return 0, xerrors.New(InvalidToken)
	}

	if !parsedToken.Valid {
		return 0, xerrors.New(InvalidToken)
	}

	claim, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, xerrors.New(InvalidToken)
	}

	if claim.ExpiresAt == nil || !time.Now().Before(claim.ExpiresAt.Time) {
		return 0, xerrors.New(InvalidToken)
	}

	userID, err := strconv.ParseInt(claim.Subject, 10, 64)
	if err != nil {
		return 0, xerrors.New(InvalidToken)
	}

	auth.verified.Store(tokenString, verifiedToken{
		userID:    userID,
		expiresAt: claim.ExpiresAt.Time,
	})

	return userID, nil
}

func (auth *Auth) GetPrincipal(r *http.Request) (int64, error) {
	userID, ok := web.GetValueFromContext[int64](r, PrincipalCtxKey)
	if !ok {
		return 0, NotAuthenticatedPrincipal
	}

	return userID, nil
}

func (auth *Auth) SetPrincipal(r *http.Request, userID int64) *http.Request {
	return web.AddValueToContext(r, PrincipalCtxKey, userID)
}

func (auth *Auth) IsUserAuthenticated(r *http.Request) bool {
	_, err := auth.GetPrincipal(r)
	return err == nil
}
