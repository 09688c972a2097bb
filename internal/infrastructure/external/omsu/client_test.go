package omsu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultClientConfig(server.URL + "/")
	cfg.Timeout = 2 * time.Second
	// No pacing in tests.
	cfg.RateLimiterConfig = RateLimiterConfig{
		RequestsPerSecond: 1000,
		BurstSize:         1000,
		MinInterval:       0,
		WaitTimeout:       time.Second,
	}
	return NewClient(cfg)
}

func TestAPIResponse_Parsing(t *testing.T) {
	jsonData := `{
		"success": true,
		"data": [
			{"id": 1178, "name": "МПБ-901-О-01", "real_group_id": 14044},
			{"id": 1179, "name": "МПБ-902-О-01"}
		]
	}`

	var response APIResponse[[]GroupDTO]
	err := json.Unmarshal([]byte(jsonData), &response)
	assert.NoError(t, err)

	assert.True(t, response.Success)
	assert.Len(t, response.Data, 2)
	assert.Equal(t, 1178, response.Data[0].ID)
	assert.Equal(t, "МПБ-901-О-01", response.Data[0].Name)
	assert.Equal(t, 14044, response.Data[0].RealGroupID)
	assert.Zero(t, response.Data[1].RealGroupID)
}

func TestClient_Groups(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dict/groups", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": [{"id": 1, "name": "G-1"}]}`))
	})

	groups, err := client.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, "G-1", groups[0].Name)
}

func TestClient_GroupSchedule(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/group/1178", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [
				{
					"day": "02.09.2025",
					"lessons": [
						{"id": 555, "lesson_id": 42, "day": "02.09.2025", "time": 1,
						 "lesson": "Matematika", "teacher_id": 7, "auditory_id": 9}
					]
				}
			]
		}`))
	})

	days, err := client.GroupSchedule(context.Background(), 1178)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "02.09.2025", days[0].Day)
	require.Len(t, days[0].Lessons, 1)

	raw := days[0].Lessons[0]
	assert.Equal(t, int64(555), raw.SourceID())
	assert.Equal(t, 42, raw.CellID())
	assert.Equal(t, 1, raw.TimeSlot())
	assert.Equal(t, "Matematika", raw.SubjectName())
}

func TestClient_GroupSchedule_EmptyIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	})

	days, err := client.GroupSchedule(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestClient_SuccessFalseIsAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "backend offline"}`))
	})

	_, err := client.GroupSchedule(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPIFailure)
	assert.Contains(t, err.Error(), "backend offline")
}

func TestClient_Non200IsAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Tutors(context.Background())
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	})

	_, err := client.Rooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestMapper_Rooms(t *testing.T) {
	mapper := NewMapper()
	rooms := mapper.Rooms([]AuditoryDTO{
		{ID: 9, Name: "404", Building: "2 корпус"},
		{ID: 10, Name: "спортзал"},
	})

	assert.Len(t, rooms, 2)
	assert.Equal(t, "404", rooms[0].Name)
	assert.Equal(t, "2 корпус", rooms[0].Building)
	assert.Empty(t, rooms[1].Building)
}

func TestRateLimiter_MinInterval(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1000,
		BurstSize:         10,
		MinInterval:       30 * time.Millisecond,
		WaitTimeout:       time.Second,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Allow(context.Background()))
	}
	// Two enforced gaps between three requests.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
