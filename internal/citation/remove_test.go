package citation

import "testing"

func TestRemoveCitationFromTextIdempotent(t *testing.T) {
	text := "The principle was affirmed (as held in [2020] FAKE 999), and is settled law."
	once := RemoveCitationFromText(text, "[2020] FAKE 999")
	twice := RemoveCitationFromText(once, "[2020] FAKE 999")
	if once != twice {
		t.Fatalf("removal not idempotent:\nonce: %q\ntwice: %q", once, twice)
	}
}

func TestRemoveCitationFromTextParenForm(t *testing.T) {
	text := "This was decided ([2020] FAKE 999) last year."
	out := RemoveCitationFromText(text, "[2020] FAKE 999")
	if containsSub(out, "[2020] FAKE 999") {
		t.Fatalf("citation not removed: %q", out)
	}
}

func containsSub(s, sub string) bool {
	return len(s) >= len(sub) && (indexOfStr(s, sub) >= 0)
}

func indexOfStr(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
