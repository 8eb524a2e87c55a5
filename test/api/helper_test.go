package api_test

import (
	"fmt"
	"testing"
	"time"
)

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}

// testDay returns a date far enough out to clear the minimum lead time.
func testDay() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

// findFreeSlot fetches availability for the service and returns one free
// start/end pair.
func findFreeSlot(t *testing.T, serviceID string, nth int) (start, end string) {
	t.Helper()

	resp := makeRequest("GET", fmt.Sprintf("/availability?service_id=%s&date=%s", serviceID, testDay()), nil)
	if !resp.IsSuccess() {
		t.Fatalf("availability request failed: %s", resp.Message)
	}

	slots, ok := resp.Data["slots"].([]interface{})
	if !ok || len(slots) == 0 {
		t.Skip("no free slots on test day")
	}
	if nth >= len(slots) {
		nth = len(slots) - 1
	}

	slot, ok := slots[nth].(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected slot shape: %v", slots[nth])
	}
	start, _ = slot["start"].(string)
	end, _ = slot["end"].(string)
	if start == "" || end == "" {
		t.Fatalf("slot missing start/end: %v", slot)
	}
	return start, end
}

func holdSlot(t *testing.T, serviceID, start, end string) TestResponse {
	t.Helper()
	return makeRequest("POST", "/bookings/hold", map[string]interface{}{
		"service_id":  serviceID,
		"start_time":  start,
		"end_time":    end,
		"guest_name":  "Integration Test",
		"guest_email": uniqueEmail("guest"),
	})
}
