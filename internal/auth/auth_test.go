package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdocs/internal/apperror"
	"certdocs/internal/model"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier([]byte("secret"))
	tok, err := v.Sign(Identity{UserID: 7, Email: "medico@example.cl", Role: RoleMedic}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.UserID)
	assert.Equal(t, "medico@example.cl", id.Email)
	assert.Equal(t, RoleMedic, id.Role)
	assert.Equal(t, tok, id.Token)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier([]byte("secret"))
	other := NewVerifier([]byte("other"))

	expired, err := v.Sign(Identity{UserID: 1, Role: RoleAdministrator}, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.Sign(Identity{UserID: 1, Role: RoleAdministrator}, time.Hour)
	require.NoError(t, err)
	badRole, err := v.Sign(Identity{UserID: 1, Role: Role(42)}, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdministrator}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"expired", expired},
		{"wrong key", wrongKey},
		{"unknown role", badRole},
		{"alg none", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, apperror.ErrInvalidToken)
		})
	}
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdministrator, CapDelete, true},
		{RoleAdministrator, CapDownloadBundle, true},
		{RoleSecretary, CapDownloadBundle, true},
		{RoleSecretary, CapGenerateForms, false},
		{RoleMedic, CapGenerateForms, true},
		{RoleMedic, CapDelete, false},
		{RolePsychologist, CapStamp, true},
		{RolePsychotechnician, CapUpload, false},
		{RolePsychotechnician, CapGenerateForms, false},
		{RoleDocumenter, CapRead, true},
		{RoleDocumenter, CapUpload, false},
		{Role(0), CapRead, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Can(tt.cap), "%s %s", tt.role, tt.cap)
	}
}

func TestRole_CanAuthor(t *testing.T) {
	assert.True(t, RoleMedic.CanAuthor(model.KindMedicalForm))
	assert.False(t, RoleMedic.CanAuthor(model.KindPsychologicalForm))
	assert.True(t, RolePsychologist.CanAuthor(model.KindPsychologicalForm))
	assert.True(t, RoleAdministrator.CanAuthor(model.KindMedicalForm))
	assert.False(t, RoleAdministrator.CanAuthor(model.KindCredential))
	assert.False(t, RoleSecretary.CanAuthor(model.KindMedicalForm))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "psychotechnician", RolePsychotechnician.String())
	assert.Equal(t, "unknown", Role(99).String())
	assert.False(t, Role(99).Valid())
}
