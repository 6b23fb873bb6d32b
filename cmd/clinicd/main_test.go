package main

import "testing"

func TestCommandTree(t *testing.T) {
	cases := []struct {
		name string
		use  string
	}{
		{"serve", "serve"},
		{"migrate", "migrate"},
		{"sweep", "sweep"},
	}

	cmds := map[string]bool{
		serveCmd().Use:   true,
		migrateCmd().Use: true,
		sweepCmd().Use:   true,
	}
	for _, tc := range cases {
		if !cmds[tc.use] {
			t.Errorf("expected %s command to be registered", tc.name)
		}
	}
}

func TestMigrateSubcommands(t *testing.T) {
	cmd := migrateCmd()
	subs := map[string]bool{}
	for _, sub := range cmd.Commands() {
		subs[sub.Use] = true
	}
	for _, want := range []string{"up", "status"} {
		if !subs[want] {
			t.Errorf("expected migrate %s subcommand", want)
		}
	}
}
