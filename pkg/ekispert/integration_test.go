package ekispert

import (
	"context"
	"os"
	"testing"
)

// TestEkispertIntegration_SearchCourse talks to the real provider.
// It needs EKISPERT_API_KEY and is skipped in short mode.
func TestEkispertIntegration_SearchCourse(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	apiKey := os.Getenv("EKISPERT_API_KEY")
	if apiKey == "" {
		t.Skip("EKISPERT_API_KEY not set, skipping integration test")
	}

	client, err := NewClient(apiKey)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	result, err := client.SearchCourse(context.Background(), fukuokaCityHall, hakataStation)
	if err != nil {
		t.Fatalf("Failed to search course: %v", err)
	}

	course, ok := result.Response.BestCourse()
	if !ok {
		t.Fatalf("Expected a course between Fukuoka City Hall and Hakata, got none: %s", result.Response.ErrorMessage())
	}

	it, err := Normalize(course)
	if err != nil {
		t.Fatalf("Failed to normalize course: %v", err)
	}
	if len(it.Segments) == 0 {
		t.Errorf("Expected at least one segment, got 0")
	}
	if it.DurationMin <= 0 {
		t.Errorf("Expected a positive duration, got %d", it.DurationMin)
	}
	if len(it.Waypoints) < 2 {
		t.Logf("Only %d waypoints had coordinates; the map view will skip this route", len(it.Waypoints))
	}
}
