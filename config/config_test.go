package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func clearLdapEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LDAP_NAME", "LDAP_HOST", "LDAP_PORT", "LDAP_BASEDN", "LDAP_USERNAME", "LDAP_PASSWORD", "LDAP_SSL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestDefaultConnectionFromEnvFile(t *testing.T) {
	clearLdapEnv(t)
	cfg := Config{EnvPath: writeEnvFile(t, `LDAP_NAME=corp
LDAP_HOST=ldap.example.com
LDAP_PORT=636
LDAP_BASEDN=dc=example,dc=com
LDAP_USERNAME=cn=admin,dc=example,dc=com
LDAP_PASSWORD=secret
LDAP_SSL=true
`)}

	settings := cfg.DefaultConnection()
	assert.Equal(t, directory.ConnectionSettings{
		Name:     "corp",
		Server:   "ldap.example.com",
		Port:     636,
		BaseDn:   "dc=example,dc=com",
		Username: "cn=admin,dc=example,dc=com",
		Password: "secret",
		UseSsl:   true,
	}, settings)
}

func TestDefaultConnectionMissingFile(t *testing.T) {
	clearLdapEnv(t)
	cfg := Config{EnvPath: filepath.Join(t.TempDir(), "does-not-exist.env")}

	settings := cfg.DefaultConnection()
	assert.Empty(t, settings.Server)
	assert.Equal(t, directory.DefaultPort, settings.Port)
}

func TestDefaultConnectionBadPortFallsBack(t *testing.T) {
	clearLdapEnv(t)
	cfg := Config{EnvPath: writeEnvFile(t, "LDAP_HOST=host\nLDAP_PORT=999999\n")}

	settings := cfg.DefaultConnection()
	assert.Equal(t, directory.DefaultPort, settings.Port)
}
