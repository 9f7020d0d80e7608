package place_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/placeproxy/internal/core/domain/place"
)

func TestParseCountryCode_PadsToThreeDigits(t *testing.T) {
	for raw, want := range map[string]string{"528": "528", "56": "056", "4": "004", " 250 ": "250"} {
		code, err := place.ParseCountryCode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, code.String())
		assert.True(t, code.Valid())
	}
}

func TestParseCountryCode_RejectsNonDigits(t *testing.T) {
	for _, raw := range []string{"", "NLD", "12a", "1234", `528" . ?x ?y ?z`, "-12"} {
		_, err := place.ParseCountryCode(raw)
		var ve *place.ValidationError
		require.True(t, errors.As(err, &ve), "input %q", raw)
		assert.Equal(t, "iso3", ve.Field)
	}
}

func TestParseEntityID(t *testing.T) {
	id, err := place.ParseEntityID(" Q55 ")
	require.NoError(t, err)
	assert.Equal(t, "Q55", id.String())

	for _, raw := range []string{"", "Q", "q55", "P31", "Q55}", "Q1 . ?s ?p ?o", "55"} {
		_, err := place.ParseEntityID(raw)
		var ve *place.ValidationError
		require.True(t, errors.As(err, &ve), "input %q", raw)
	}
}

func TestZeroValuesAreInvalid(t *testing.T) {
	assert.False(t, place.CountryCode{}.Valid())
	assert.False(t, place.EntityID{}.Valid())
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := &place.TransportError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
