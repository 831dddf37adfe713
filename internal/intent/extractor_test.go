package intent

import "testing"

func TestExtractPrimaryPatterns(t *testing.T) {
	cases := []struct {
		text string
		want LocationPair
	}{
		{"from Main Gate to Rourkela Station", LocationPair{"Main Gate", "Rourkela Station"}},
		{"between Main Gate and Rourkela Station", LocationPair{"Main Gate", "Rourkela Station"}},
		{"how far is it Main Gate to Rourkela Station", LocationPair{"Main Gate", "Rourkela Station"}},
		{"Main Gate to Rourkela Station", LocationPair{"Main Gate", "Rourkela Station"}},
		{"what is the distance from SAC to the airport?", LocationPair{"SAC", "the airport"}},
	}
	for _, tc := range cases {
		got, ok := Extract(tc.text)
		if !ok {
			t.Errorf("Extract(%q): no match", tc.text)
			continue
		}
		if got != tc.want {
			t.Errorf("Extract(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestExtractReversedFallback(t *testing.T) {
	got, ok := Extract("Rourkela Station from Main Gate")
	if !ok {
		t.Fatal("expected reversed fallback to match")
	}
	if got.Origin != "Main Gate" || got.Destination != "Rourkela Station" {
		t.Fatalf("reversed fallback got %+v", got)
	}
}

func TestExtractStopsAtPunctuation(t *testing.T) {
	got, ok := Extract("from Main Gate to Rourkela Station, please")
	if !ok {
		t.Fatal("expected match")
	}
	if got.Destination != "Rourkela Station" {
		t.Fatalf("destination should stop at comma, got %q", got.Destination)
	}
}

func TestExtractRejectsSingleToken(t *testing.T) {
	if _, ok := Extract("Rourkela"); ok {
		t.Fatal("single token should not extract a pair")
	}
}

func TestExtractRejectsIdenticalPlaces(t *testing.T) {
	// "gate to gate" must not satisfy the primary cascade; with no "from"
	// present the reversed fallback cannot fire either.
	if pair, ok := Extract("gate to gate"); ok {
		t.Fatalf("identical places should not match, got %+v", pair)
	}
}

func TestExtractQuotedPair(t *testing.T) {
	got, ok := ExtractQuoted(`distance "Main Gate" "Rourkela Station" please`)
	if !ok {
		t.Fatal("expected quoted pair")
	}
	// Quoted spans go through campus-alias expansion.
	if got.Origin != "Main Gate"+CampusSuffix {
		t.Fatalf("origin = %q", got.Origin)
	}
	if got.Destination != "Rourkela Station" {
		t.Fatalf("destination = %q", got.Destination)
	}
}

func TestSanitizePlace(t *testing.T) {
	if got := SanitizePlace("  ,, Main   Gate ;: "); got != "Main Gate" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizePlace("Sector-2, Rourkela"); got != "Sector-2, Rourkela" {
		t.Fatalf("interior punctuation must survive, got %q", got)
	}
}

func TestExpandCampusAlias(t *testing.T) {
	if got := ExpandCampusAlias("Main Gate"); got != "Main Gate"+CampusSuffix {
		t.Fatalf("got %q", got)
	}
	if got := ExpandCampusAlias("Main Gate, NIT Rourkela"); got != "Main Gate, NIT Rourkela" {
		t.Fatalf("already-qualified name must pass through, got %q", got)
	}
	if got := ExpandCampusAlias("Bhubaneswar Airport"); got != "Bhubaneswar Airport" {
		t.Fatalf("non-campus name must pass through, got %q", got)
	}
}

func TestHasDistanceIntent(t *testing.T) {
	if !HasDistanceIntent("how far is the station?") {
		t.Fatal("expected distance intent")
	}
	if !HasDistanceIntent("what is the eta to the airport") {
		t.Fatal("expected distance intent")
	}
	if HasDistanceIntent("how do I post a ride?") {
		t.Fatal("unexpected distance intent")
	}
}
