package domain

import "testing"

func TestParseLeadStatus(t *testing.T) {
	for _, s := range LeadStatuses {
		got, err := ParseLeadStatus(string(s))
		if err != nil || got != s {
			t.Fatalf("ParseLeadStatus(%q) = %q, %v", s, got, err)
		}
	}

	if _, err := ParseLeadStatus("qualificado"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseChannel(t *testing.T) {
	if _, err := ParseChannel("site"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseChannel("fax"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}
