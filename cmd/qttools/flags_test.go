package main

import (
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func newTestFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringArrayP("widget-path", "p", nil, "")
	fs.Bool("example-widget-path", false, "")
	fs.BoolP("help", "h", false, "")
	return fs
}

func TestSplitKnownFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOwn  []string
		wantRest []string
	}{
		{
			name: "empty",
		},
		{
			name:     "only tool args",
			args:     []string{"-style", "fusion", "main.ui"},
			wantRest: []string{"-style", "fusion", "main.ui"},
		},
		{
			name:     "mixed order preserved",
			args:     []string{"-p", "a", "main.ui", "--example-widget-path", "--widget-path", "b", "-qmljsdebugger=port:1234"},
			wantOwn:  []string{"-p", "a", "--example-widget-path", "--widget-path", "b"},
			wantRest: []string{"main.ui", "-qmljsdebugger=port:1234"},
		},
		{
			name:    "equals form",
			args:    []string{"--widget-path=a", "--example-widget-path=false"},
			wantOwn: []string{"--widget-path=a", "--example-widget-path=false"},
		},
		{
			name:     "double dash ends wrapper flags",
			args:     []string{"-p", "a", "--", "-p", "--help"},
			wantOwn:  []string{"-p", "a"},
			wantRest: []string{"-p", "--help"},
		},
		{
			name:     "unknown long flag forwarded",
			args:     []string{"--enableinternaldynamicproperties", "-h"},
			wantOwn:  []string{"-h"},
			wantRest: []string{"--enableinternaldynamicproperties"},
		},
		{
			name:     "grouped shorthand forwarded",
			args:     []string{"-ph", "-platform", "offscreen"},
			wantRest: []string{"-ph", "-platform", "offscreen"},
		},
		{
			name:    "trailing value flag",
			args:    []string{"-p"},
			wantOwn: []string{"-p"},
		},
		{
			name:     "single dash forwarded",
			args:     []string{"-"},
			wantRest: []string{"-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			own, rest := splitKnownFlags(newTestFlagSet(), tt.args)
			if !reflect.DeepEqual(own, tt.wantOwn) {
				t.Errorf("own = %q, want %q", own, tt.wantOwn)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
		})
	}
}

func TestSplitKnownFlagsParses(t *testing.T) {
	fs := newTestFlagSet()
	own, _ := splitKnownFlags(fs, []string{"-p", "a", "file.ui", "--widget-path=b", "--example-widget-path"})
	if err := fs.Parse(own); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	paths, _ := fs.GetStringArray("widget-path")
	if !reflect.DeepEqual(paths, []string{"a", "b"}) {
		t.Errorf("widget-path = %q", paths)
	}
	if example, _ := fs.GetBool("example-widget-path"); !example {
		t.Error("example-widget-path not set")
	}
}
