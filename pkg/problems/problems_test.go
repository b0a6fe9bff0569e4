package problems

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("resolve: %w", New(ResolutionFailure, "site", base))

	k, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, ResolutionFailure, k)
	assert.True(t, Is(err, ResolutionFailure))
	assert.False(t, Is(err, AuthFailure))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "resolve: site: boom", err.Error())
}

func TestNewNil(t *testing.T) {
	assert.NoError(t, New(AuthFailure, "token", nil))
}

func TestFatal(t *testing.T) {
	for _, k := range []Kind{AuthFailure, ResolutionFailure, SourceFailure, ConfigFailure, Internal} {
		assert.True(t, k.Fatal(), k)
	}
	for _, k := range []Kind{RoutingMiss, UploadFailure, ReportFailure} {
		assert.False(t, k.Fatal(), k)
	}
}

func TestFrom(t *testing.T) {
	p := From(Errorf(AuthFailure, "token", "no access token: %s", "invalid_client"), "authenticate")
	assert.Equal(t, "urn:spupload:problem:auth-failure", p.Type)
	assert.Equal(t, "Access token could not be obtained", p.Title)
	assert.Equal(t, "token: no access token: invalid_client", p.Detail)
	assert.Equal(t, "authenticate", p.Step)

	p = From(errors.New("panic"), "upload")
	assert.Equal(t, Type(Internal), p.Type)
}
