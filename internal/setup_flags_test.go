package internal

import (
	"io"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func TestParseFlagsDefaultValues(t *testing.T) {
	got, rest, err := parseFlags(defaultFlags, []string{"hello", "there"}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, got, defaultFlags)
	testboil.FailTestIfDiff(t, len(rest), 2)
}

func TestParseFlagsShortFlags(t *testing.T) {
	got, rest, err := parseFlags(defaultFlags, []string{"-s", "svc", "-n", "bob", "-r", "-t", "0.5", "msg"}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, got, Configurations{ServiceID: "svc", AgentName: "bob", PrintRaw: true, Temperature: 0.5})
	testboil.FailTestIfDiff(t, rest[0], "msg")
}

func TestParseFlagsLongFlags(t *testing.T) {
	got, _, err := parseFlags(defaultFlags, []string{"-service", "svc", "-name", "bob", "-raw", "-temperature", "0.5", "-version"}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testboil.FailTestIfDiff(t, got, Configurations{ServiceID: "svc", AgentName: "bob", PrintRaw: true, Temperature: 0.5, Version: true})
}

func TestParseFlagsMutuallyExclusive(t *testing.T) {
	tcs := [][]string{
		{"-s", "a", "-service", "b"},
		{"-n", "a", "-name", "b"},
		{"-t", "0.1", "-temperature", "0.2"},
	}
	for _, args := range tcs {
		if _, _, err := parseFlags(defaultFlags, args, io.Discard); err == nil {
			t.Errorf("expected error for args: %v", args)
		}
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	if _, _, err := parseFlags(defaultFlags, []string{"-nope"}, io.Discard); err == nil {
		t.Fatal("expected error")
	}
}
