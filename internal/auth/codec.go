package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/pkg/config"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

// LegacyPrefix marks tokens produced by LegacyCodec.
const LegacyPrefix = "temp_"

// DefaultValidity is how long a token is accepted after issuance.
const DefaultValidity = 24 * time.Hour

// Codec turns claim sets into bearer tokens and back.
type Codec interface {
	Encode(claims models.ClaimSet) (string, error)
	Decode(token string) (*models.ClaimSet, error)
}

// CodecOption customises a codec.
type CodecOption func(*codecOptions)

type codecOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CodecOption {
	return func(o *codecOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []CodecOption) codecOptions {
	o := codecOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewCodec picks the codec configured by TOKEN_SCHEME.
func NewCodec(cfg config.AuthConfig, opts ...CodecOption) Codec {
	if cfg.TokenScheme == config.TokenSchemeJWT {
		return NewSignedCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenValidity, opts...)
	}
	return NewLegacyCodec(cfg.TokenValidity, opts...)
}

type wireImpersonation struct {
	OriginalUserID int64  `json:"idOriginal"`
	OriginalRole   string `json:"papelOriginal"`
}

type legacyPayload struct {
	UserID        int64              `json:"idusuario"`
	Login         string             `json:"login"`
	GroupID       int64              `json:"grupo"`
	Role          string             `json:"nomeGrupo"`
	Timestamp     int64              `json:"timestamp"`
	Impersonation *wireImpersonation `json:"personificando,omitempty"`
}

// LegacyCodec produces "temp_" + base64(JSON) tokens understood by the web client.
// They are not signed.
type LegacyCodec struct {
	validity time.Duration
	now      func() time.Time
}

// NewLegacyCodec builds a LegacyCodec. A non positive validity means DefaultValidity.
func NewLegacyCodec(validity time.Duration, opts ...CodecOption) *LegacyCodec {
	if validity <= 0 {
		validity = DefaultValidity
	}
	o := buildOptions(opts)
	return &LegacyCodec{validity: validity, now: o.now}
}

// Encode stamps the issuance time when the claim set has none.
func (c *LegacyCodec) Encode(claims models.ClaimSet) (string, error) {
	issued := claims.IssuedAt
	if issued.IsZero() {
		issued = c.now()
	}

	payload := legacyPayload{
		UserID:        claims.UserID,
		Login:         claims.Login,
		GroupID:       claims.GroupID,
		Role:          claims.Role,
		Timestamp:     issued.UnixMilli(),
		Impersonation: toWire(claims.Impersonation),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}
	return LegacyPrefix + base64.StdEncoding.EncodeToString(raw), nil
}

// Decode validates the prefix, the payload and the validity window.
func (c *LegacyCodec) Decode(token string) (*models.ClaimSet, error) {
	if !strings.HasPrefix(token, LegacyPrefix) {
		return nil, appErrors.ErrTokenInvalidFormat
	}

	raw, err := decodeBase64(strings.TrimPrefix(token, LegacyPrefix))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalidFormat.Code, appErrors.ErrTokenInvalidFormat.Status, appErrors.ErrTokenInvalidFormat.Message)
	}

	var payload legacyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalidFormat.Code, appErrors.ErrTokenInvalidFormat.Status, appErrors.ErrTokenInvalidFormat.Message)
	}
	if payload.UserID <= 0 || payload.Timestamp == 0 {
		return nil, appErrors.ErrTokenInvalidFormat
	}

	issued := time.UnixMilli(payload.Timestamp)
	if c.now().Sub(issued) > c.validity {
		return nil, appErrors.ErrTokenExpired
	}

	return &models.ClaimSet{
		UserID:        payload.UserID,
		Login:         payload.Login,
		GroupID:       payload.GroupID,
		Role:          payload.Role,
		IssuedAt:      issued,
		Impersonation: fromWire(payload.Impersonation),
		Permissions:   PermissionsFor(payload.Role).Permissions,
	}, nil
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return raw, nil
	}
	return nil, errors.Join(errors.New("token payload is not base64"), err)
}

func toWire(imp *models.Impersonation) *wireImpersonation {
	if imp == nil {
		return nil
	}
	return &wireImpersonation{OriginalUserID: imp.OriginalUserID, OriginalRole: imp.OriginalRole}
}

func fromWire(imp *wireImpersonation) *models.Impersonation {
	if imp == nil {
		return nil
	}
	return &models.Impersonation{OriginalUserID: imp.OriginalUserID, OriginalRole: imp.OriginalRole}
}
