package users

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/cli/clitest"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

func user(t *testing.T, env *clitest.Env, username string) (models.UserRecord, bool) {
	t.Helper()
	return auth.FindUser(env.State(t).Users, username)
}

func TestUserAddAndList(t *testing.T) {
	env := clitest.New(t)
	env.SignIn()

	env.MustRun(t, &UserAddCmd{Username: "amy", Password: "hunter2"})
	u, ok := user(t, env, "amy")
	if !ok || u.PasswordHash == "" || u.Password != "" {
		t.Fatalf("amy = %+v, %v", u, ok)
	}
	if !auth.Authenticate(env.State(t).Users, "amy", "hunter2") {
		t.Error("new user cannot authenticate")
	}

	out := env.MustRun(t, &UserListCmd{})
	if !strings.Contains(out, "eddie (admin)") || !strings.Contains(out, "amy") {
		t.Errorf("list output:\n%s", out)
	}

	if err := env.Run(t, &UserAddCmd{Username: "amy", Password: "x"}); err == nil {
		t.Error("duplicate user accepted")
	}
}

func TestUserRemove(t *testing.T) {
	env := clitest.New(t)
	env.SignIn()
	env.MustRun(t, &UserAddCmd{Username: "amy", Password: "hunter2"})

	env.MustRun(t, &UserRemoveCmd{Username: "amy", Yes: true})
	if _, ok := user(t, env, "amy"); ok {
		t.Error("amy still present")
	}

	if err := env.Run(t, &UserRemoveCmd{Username: "eddie", Yes: true}); !errors.Is(err, errors.ErrProtectedUser) {
		t.Errorf("removing the admin error = %v", err)
	}
	if err := env.Run(t, &UserRemoveCmd{Username: "ghost", Yes: true}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("removing unknown user error = %v", err)
	}
}

func TestUserPasswd(t *testing.T) {
	env := clitest.New(t)
	env.SignIn()
	env.MustRun(t, &UserAddCmd{Username: "amy", Password: "hunter2"})

	env.MustRun(t, &UserPasswdCmd{Username: "amy", Password: "correct horse"})
	if !auth.Authenticate(env.State(t).Users, "amy", "correct horse") {
		t.Error("password not changed")
	}

	// Only the admin may change the admin password
	env.SignInAs("amy", "correct horse")
	if err := env.Run(t, &UserPasswdCmd{Username: "eddie", Password: "x"}); !errors.Is(err, errors.ErrProtectedUser) {
		t.Errorf("amy changing admin password error = %v", err)
	}

	out := env.MustRun(t, &UserPasswdCmd{Password: "battery staple"})
	if !strings.Contains(out, "Password changed for amy") {
		t.Errorf("passwd output = %q", out)
	}
}

func TestUserMigrate(t *testing.T) {
	env := clitest.New(t)
	doc := env.Document(t)
	doc[models.KeyUsers] = append(doc[models.KeyUsers].([]any), map[string]any{"username": "amy", "password": "legacy"})
	if err := env.Store.Save(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	env.SignIn()

	out := env.MustRun(t, &UserListCmd{})
	if !strings.Contains(out, "plaintext password") {
		t.Errorf("legacy user not flagged:\n%s", out)
	}

	out = env.MustRun(t, &UserMigrateCmd{})
	if !strings.Contains(out, "Hashed 1 plaintext password(s)") {
		t.Errorf("migrate output = %q", out)
	}
	u, _ := user(t, env, "amy")
	if u.IsLegacy() || !auth.Authenticate(env.State(t).Users, "amy", "legacy") {
		t.Errorf("amy after migrate = %+v", u)
	}

	out = env.MustRun(t, &UserMigrateCmd{})
	if !strings.Contains(out, "No plaintext passwords found.") {
		t.Errorf("second migrate output = %q", out)
	}
}
