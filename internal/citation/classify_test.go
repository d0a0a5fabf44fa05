package citation

import "testing"

func TestClassifyInternationalShortCircuit(t *testing.T) {
	cites := Extract("See [1994] 1 AC 324 for background.")
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %+v", cites)
	}
	resolved, done := ClassifyWithoutVerification(cites[0])
	if !done {
		t.Fatalf("expected classification to fully resolve AC citation")
	}
	if !resolved.Exists {
		t.Fatalf("expected exists=true")
	}
	want := "UK/International citation (Appeal Cases (House of Lords/Privy Council)) - not in Australian databases"
	if resolved.Reason != want {
		t.Fatalf("reason mismatch:\n got: %q\nwant: %q", resolved.Reason, want)
	}
}

func TestClassifyLegislationSkipsVerification(t *testing.T) {
	cites := Extract("Under the Fair Work Act 2009 (Cth)...")
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %+v", cites)
	}
	resolved, done := ClassifyWithoutVerification(cites[0])
	if !done || !resolved.Exists {
		t.Fatalf("expected legislation to resolve as existing")
	}
	if resolved.Reason != "Legislation reference — verification skipped" {
		t.Fatalf("unexpected reason: %q", resolved.Reason)
	}
}
