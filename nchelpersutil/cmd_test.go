/*
Copyright © 2018 the nchelpers authors.
This file is part of nchelpers.

nchelpers is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nchelpers is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nchelpers.  If not, see <http://www.gnu.org/licenses/>.
*/

package nchelpersutil

import (
	"reflect"
	"testing"

	"github.com/pacificclimate/nchelpers"
)

func TestParseChain(t *testing.T) {
	chain, err := parseChain([]string{"downscaling", "GCM"})
	if err != nil {
		t.Fatal(err)
	}
	want := nchelpers.PrefixChain{nchelpers.Downscaling, nchelpers.GCM}
	if !reflect.DeepEqual(chain, want) {
		t.Errorf("have %v, want %v", chain, want)
	}
	if _, err := parseChain([]string{"gcm"}); err == nil {
		t.Error("expected error for unknown role token, got nil")
	}
}

// Every option must be registered with its first flag set and linked
// into the others.
func TestFlagRegistration(t *testing.T) {
	for _, option := range options {
		for _, set := range option.flagsets {
			if set.Lookup(option.name) == nil {
				t.Errorf("flag %s is not registered", option.name)
			}
		}
	}
	for _, name := range []string{"config", "strict", "loglevel"} {
		if Root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("flag %s is not a persistent flag of the root command", name)
		}
	}
	if chunksCmd.Flags().Lookup("maxbytes") == nil {
		t.Error("chunks command lacks the maxbytes flag")
	}
}

func TestConfigDefaults(t *testing.T) {
	if Cfg.GetBool("strict") {
		t.Error("strict should default to false")
	}
	if have, want := Cfg.GetString("loglevel"), "warning"; have != want {
		t.Errorf("loglevel default: have %s, want %s", have, want)
	}
	if have, want := Cfg.GetInt("maxbytes"), 1<<20; have != want {
		t.Errorf("maxbytes default: have %d, want %d", have, want)
	}
}
