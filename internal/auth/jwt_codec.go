package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

type signedClaims struct {
	UserID        int64              `json:"idusuario"`
	Login         string             `json:"login"`
	GroupID       int64              `json:"grupo"`
	Role          string             `json:"nomeGrupo"`
	Impersonation *wireImpersonation `json:"personificando,omitempty"`
	jwt.RegisteredClaims
}

// SignedCodec issues HS256 JWTs carrying the same claims as LegacyCodec.
type SignedCodec struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

// NewSignedCodec builds a SignedCodec.
func NewSignedCodec(secret, issuer string, validity time.Duration, opts ...CodecOption) *SignedCodec {
	if validity <= 0 {
		validity = DefaultValidity
	}
	o := buildOptions(opts)
	return &SignedCodec{secret: []byte(secret), issuer: issuer, validity: validity, now: o.now}
}

// Encode signs the claims.
func (c *SignedCodec) Encode(claims models.ClaimSet) (string, error) {
	issued := claims.IssuedAt
	if issued.IsZero() {
		issued = c.now()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &signedClaims{
		UserID:        claims.UserID,
		Login:         claims.Login,
		GroupID:       claims.GroupID,
		Role:          claims.Role,
		Impersonation: toWire(claims.Impersonation),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(claims.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.validity)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, issuer and expiry.
func (c *SignedCodec) Decode(tokenString string) (*models.ClaimSet, error) {
	claims := &signedClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalidFormat.Code, appErrors.ErrTokenInvalidFormat.Status, appErrors.ErrTokenInvalidFormat.Message)
	}
	if claims.UserID <= 0 {
		return nil, appErrors.ErrTokenInvalidFormat
	}

	var issued time.Time
	if claims.IssuedAt != nil {
		issued = claims.IssuedAt.Time
	}

	return &models.ClaimSet{
		UserID:        claims.UserID,
		Login:         claims.Login,
		GroupID:       claims.GroupID,
		Role:          claims.Role,
		IssuedAt:      issued,
		Impersonation: fromWire(claims.Impersonation),
		Permissions:   PermissionsFor(claims.Role).Permissions,
	}, nil
}

var (
	_ Codec = (*LegacyCodec)(nil)
	_ Codec = (*SignedCodec)(nil)
)
