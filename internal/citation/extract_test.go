package citation

import "testing"

func TestExtractMediumNeutral(t *testing.T) {
	cites := Extract("The court in [2020] HCA 45 held that...")
	if len(cites) != 1 {
		t.Fatalf("expected 1 citation, got %d: %+v", len(cites), cites)
	}
	if cites[0].Normalized != "[2020] HCA 45" {
		t.Fatalf("unexpected normalized form: %q", cites[0].Normalized)
	}
}

func TestExtractActSentenceStarterRejected(t *testing.T) {
	cites := Extract("Does Act 1975 apply here?")
	for _, c := range cites {
		if c.Subtype == SubtypeLegislation {
			t.Fatalf("expected no legislation citation, got %+v", c)
		}
	}
}

func TestExtractAustralianAct(t *testing.T) {
	cites := Extract("Under the Evidence Act 1995 (Cth), the court must...")
	found := false
	for _, c := range cites {
		if c.Subtype == SubtypeLegislation && c.Year == "1995" {
			found = true
			if c.Jurisdiction != "Cth" {
				t.Fatalf("expected jurisdiction Cth, got %q", c.Jurisdiction)
			}
		}
	}
	if !found {
		t.Fatalf("expected Evidence Act 1995 to be extracted")
	}
}

func TestExtractDeduplicates(t *testing.T) {
	cites := Extract("[2020]  HCA   45 ... as seen in [2020] HCA 45 again")
	if len(cites) != 1 {
		t.Fatalf("expected dedup to 1 citation, got %d", len(cites))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	s := "  [2020]   HCA    45  "
	once := Normalize(s)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("Normalize not idempotent: %q vs %q", once, twice)
	}
}
