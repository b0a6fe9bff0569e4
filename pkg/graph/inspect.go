package graph

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// RequiredRoles are the application permissions the upload job relies on.
var RequiredRoles = []string{"Sites.ReadWrite.All", "Mail.Send"}

// TokenInfo holds diagnostic claims of an access token.
type TokenInfo struct {
	AppID     string
	TenantID  string
	ExpiresAt time.Time
	Roles     []string
}

// InspectToken reads claims from raw without verifying its signature. The
// result is only used for logging; authorization is Graph's job.
func InspectToken(raw string) (TokenInfo, error) {
	tok, err := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return TokenInfo{}, fmt.Errorf("parse access token: %w", err)
	}
	info := TokenInfo{ExpiresAt: tok.Expiration()}
	if v, ok := tok.Get("appid"); ok {
		info.AppID, _ = v.(string)
	}
	if v, ok := tok.Get("tid"); ok {
		info.TenantID, _ = v.(string)
	}
	if v, ok := tok.Get("roles"); ok {
		switch rs := v.(type) {
		case []any:
			for _, r := range rs {
				if s, ok := r.(string); ok {
					info.Roles = append(info.Roles, s)
				}
			}
		case []string:
			info.Roles = append(info.Roles, rs...)
		}
	}
	return info, nil
}

// MissingRoles lists RequiredRoles absent from the token.
func (i TokenInfo) MissingRoles() []string {
	have := map[string]struct{}{}
	for _, r := range i.Roles {
		have[r] = struct{}{}
	}
	var out []string
	for _, r := range RequiredRoles {
		if _, ok := have[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}
