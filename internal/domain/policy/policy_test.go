package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatebot/internal/domain/user"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.Equal(t, 7, p.FreePeriodDays(user.RoleDeveloper))
	assert.Equal(t, 14, p.FreePeriodDays(user.RoleAgency))
	assert.Equal(t, 21, p.FreePeriodDays(user.RoleRealtor))
	assert.Equal(t, 30, p.FreePeriodDays(user.RoleRenter))
	assert.Zero(t, p.FreePeriodDays(user.RoleBuyer))

	assert.False(t, p.IsPremium(user.RoleBuyer))
	assert.True(t, p.IsPremium(user.RoleDeveloper))
	assert.True(t, p.LocksOnSelect(user.RoleRealtor))
	assert.False(t, p.LocksOnSelect(user.RoleSeller))
	assert.True(t, p.IsContactRestricted(user.RoleAgency))
	assert.False(t, p.IsContactRestricted(user.RoleRenter))
	assert.False(t, p.IsRatable(user.RoleBuyer))
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := writePolicy(t, `
admin_contact: "@ops"
admins: [100, 200]
roles:
  developer:
    free_period_days: 10
    locked_on_select: true
    premium: true
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, p.FreePeriodDays(user.RoleDeveloper))
	assert.False(t, p.IsContactRestricted(user.RoleDeveloper))
	assert.Equal(t, 30, p.FreePeriodDays(user.RoleRenter))
	assert.Equal(t, "@ops", p.AdminContact)
	assert.True(t, p.IsAdmin(100))
	assert.False(t, p.IsAdmin(300))
}

func TestLoad_RejectsUnknownRole(t *testing.T) {
	path := writePolicy(t, `
roles:
  landlord:
    free_period_days: 5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsNegativeFreePeriod(t *testing.T) {
	path := writePolicy(t, `
roles:
  renter:
    free_period_days: -1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestWithAdmins_Deduplicates(t *testing.T) {
	p := Default().WithAdmins(5, 5, 0, 6)
	assert.Equal(t, []int64{5, 6}, p.Admins)
}
