package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type fakeMigrator struct {
	upErr   error
	steps   []int
	forced  int
	target  uint
	version uint
	dirty   bool
	verErr  error
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return nil
}

func (f *fakeMigrator) Migrate(version uint) error {
	f.target = version
	return nil
}

func (f *fakeMigrator) Force(version int) error {
	f.forced = version
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.verErr }

func TestCommands(t *testing.T) {
	t.Run("up treats no change as success", func(t *testing.T) {
		var out bytes.Buffer
		if err := cmdUp(&fakeMigrator{upErr: migrate.ErrNoChange}, nil, &out); err != nil {
			t.Fatalf("up: %v", err)
		}
		if err := cmdUp(&fakeMigrator{upErr: errors.New("dirty database")}, nil, &out); err == nil {
			t.Fatalf("expected up error")
		}
	})

	t.Run("down defaults to one step", func(t *testing.T) {
		m := &fakeMigrator{}
		if err := cmdDown(m, nil, &bytes.Buffer{}); err != nil {
			t.Fatalf("down: %v", err)
		}
		if err := cmdDown(m, []string{"2"}, &bytes.Buffer{}); err != nil {
			t.Fatalf("down 2: %v", err)
		}
		if len(m.steps) != 2 || m.steps[0] != -1 || m.steps[1] != -2 {
			t.Fatalf("unexpected steps: %v", m.steps)
		}
		if err := cmdDown(m, []string{"0"}, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected error for zero steps")
		}
	})

	t.Run("version without migrations", func(t *testing.T) {
		var out bytes.Buffer
		if err := cmdVersion(&fakeMigrator{verErr: migrate.ErrNilVersion}, nil, &out); err != nil {
			t.Fatalf("version: %v", err)
		}
		if !strings.Contains(out.String(), "version: none") {
			t.Fatalf("unexpected output: %q", out.String())
		}
	})

	t.Run("force and goto need arguments", func(t *testing.T) {
		m := &fakeMigrator{}
		if err := cmdForce(m, nil, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected force error without version")
		}
		if err := cmdForce(m, []string{"3"}, &bytes.Buffer{}); err != nil || m.forced != 3 {
			t.Fatalf("force: err=%v forced=%d", err, m.forced)
		}
		if err := cmdGoto(m, []string{"x"}, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected goto error for bad target")
		}
		if err := cmdGoto(m, []string{"2"}, &bytes.Buffer{}); err != nil || m.target != 2 {
			t.Fatalf("goto: err=%v target=%d", err, m.target)
		}
	})
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("-1"); err != nil || v != -1 {
		t.Fatalf("nil version must be accepted, got %d err=%v", v, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error below -1")
	}
}
