package cli

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Seq", "Outcome"}, [][]string{{"1", "reused"}, {"2"}}, []columnAlignment{alignRight})
	for _, want := range []string{"SEQ", "OUTCOME", "REUSED"} {
		if !strings.Contains(strings.ToUpper(out), want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"short":           "****",
		"sk-abcdefghijkl": "sk-a****",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}
