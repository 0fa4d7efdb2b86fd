// SPDX-License-Identifier: GPL-2.0-or-later

package cmd

import "testing"

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		in     string
		wantF  string
		wantAS string
		wantA  []QArg
	}{
		{
			in:     `deferred_debug 1`,
			wantF:  `deferred_debug 1`,
			wantAS: `1`,
			wantA:  []QArg{{"deferred_debug"}, {"1"}},
		},
		{
			in:     `deferred_override_globallight_diffuse "1 0.5 0"`,
			wantF:  `deferred_override_globallight_diffuse "1 0.5 0"`,
			wantAS: `1 0.5 0`,
			wantA:  []QArg{{"deferred_override_globallight_diffuse"}, {"1 0.5 0"}},
		},
		{
			in:     ` lights_save  maps/e1m1.lights `,
			wantF:  `lights_save  maps/e1m1.lights`,
			wantAS: `maps/e1m1.lights`,
			wantA:  []QArg{{"lights_save"}, {"maps/e1m1.lights"}},
		},
		{
			in:     `cmdlist // everything`,
			wantF:  `cmdlist // everything`,
			wantAS: `// everything`,
			wantA:  []QArg{{"cmdlist"}},
		},
		{
			in:    `  `,
			wantA: []QArg{},
		},
	} {
		arg := Parse(tc.in)
		if tc.wantF != arg.Full() {
			t.Errorf("Parse(%q).Full()=%q, want %q", tc.in, arg.Full(), tc.wantF)
		}
		if tc.wantAS != arg.ArgumentString() {
			t.Errorf("Parse(%q).ArgumentString()=%q, want %q", tc.in, arg.ArgumentString(), tc.wantAS)
		}
		as := arg.Args()
		if len(tc.wantA) != len(as) {
			t.Fatalf("Parse(%q).Args() has len(%d), want %d", tc.in, len(as), len(tc.wantA))
		}
		for i := range tc.wantA {
			if tc.wantA[i] != as[i] {
				t.Errorf("Arg[%d]=%q, want %q", i, as[i], tc.wantA[i])
			}
		}
	}
}

func TestArgv(t *testing.T) {
	a := Parse(`lights_list 3 on`)
	if got := a.Argv(1).Int(); got != 3 {
		t.Errorf("Argv(1).Int()=%v, want 3", got)
	}
	if !a.Argv(2).Bool() {
		t.Errorf("Argv(2).Bool()=false, want true")
	}
	if got := a.Argv(5).String(); got != "" {
		t.Errorf("Argv(5)=%q, want empty", got)
	}
}
