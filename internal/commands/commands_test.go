package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd(t *testing.T) {
	cmd := ServeCmd()
	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Migrate the database and serve the site", cmd.Short)

	flags := cmd.Flags()
	assert.NotNil(t, flags.Lookup("addr"))
	assert.NotNil(t, flags.Lookup("db-driver"))
	assert.NotNil(t, flags.Lookup("db-dsn"))
}

func TestMigrateCmd(t *testing.T) {
	cmd := MigrateCmd()
	assert.Equal(t, "migrate", cmd.Use)
	assert.Equal(t, "Create the database schema", cmd.Short)
}

func TestUserCmd(t *testing.T) {
	cmd := UserCmd()
	assert.Equal(t, "user", cmd.Use)
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "list"}, names)
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runRootEnv(t, nil, stdin, args...)
}

// runRootEnv runs the root command with a clean blogz environment plus env.
func runRootEnv(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"PORT", "BLOGZ_DB_DRIVER", "BLOGZ_DB_DSN", "BLOGZ_SESSION_TTL", "BLOGZ_SECURE_COOKIES"} {
		t.Setenv(k, "")
	}
	t.Setenv("BLOGZ_BCRYPT_COST", "4")
	for k, v := range env {
		t.Setenv(k, v)
	}
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateUserAddAndList(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "blogz.db")

	out, err := runRoot(t, "", "migrate", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date")

	out, err = runRoot(t, "password123\n", "user", "add", "--username", "alice1", "--email", "alice@x.com", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Created user alice1")

	_, err = runRoot(t, "password123\n", "user", "add", "--username", "alice1", "--email", "alice2@x.com", "--db-dsn", dsn)
	assert.ErrorContains(t, err, "already exists")

	_, err = runRoot(t, "password123\n", "user", "add", "--username", "alice2", "--email", "ALICE@X.com", "--db-dsn", dsn)
	assert.ErrorContains(t, err, "already exists")

	_, err = runRoot(t, "short\n", "user", "add", "--username", "bobby_b", "--email", "bob@x.com", "--db-dsn", dsn)
	assert.ErrorContains(t, err, "invalid user")

	out, err = runRoot(t, "", "user", "list", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "alice1")
	assert.NotContains(t, out, "bobby_b")
}

func TestDBFlagsOverrideEnvDriver(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "blogz.db")

	out, err := runRootEnv(t, map[string]string{"BLOGZ_DB_DRIVER": "mysql"}, "",
		"migrate", "--db-driver", "sqlite", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date (sqlite)")

	_, err = runRoot(t, "", "migrate", "--db-driver", "mysql")
	assert.ErrorContains(t, err, "required for the mysql driver")

	_, err = runRootEnv(t, map[string]string{"BLOGZ_DB_DRIVER": "mysql"}, "", "user", "list")
	assert.ErrorContains(t, err, "required for the mysql driver")
}

func TestUserAddRequiresFlags(t *testing.T) {
	_, err := runRoot(t, "password123\n", "user", "add", "--db-dsn", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}
