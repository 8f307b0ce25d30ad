package workorders

import (
	"context"
	"net/http"
	"testing"

	"github.com/Spok95/cmms-console/internal/api"
	"github.com/Spok95/cmms-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedActions(t *testing.T) {
	assignee := int64(5)
	cases := []struct {
		name string
		wo   WorkOrder
		want []Action
	}{
		{"open unassigned", WorkOrder{Status: StatusOpen}, []Action{ActionAssign, ActionStart}},
		{"open assigned by id", WorkOrder{Status: StatusOpen, Assignee: &assignee}, []Action{ActionStart}},
		{"open assigned by name", WorkOrder{Status: StatusOpen, AssigneeName: "Сидоров"}, []Action{ActionStart}},
		{"assigned", WorkOrder{Status: StatusAssigned}, []Action{ActionStart}},
		{"in progress", WorkOrder{Status: StatusInProgress}, []Action{ActionComplete}},
		{"completed", WorkOrder{Status: StatusCompleted}, []Action{ActionClose}},
		{"closed", WorkOrder{Status: StatusClosed}, nil},
		{"canceled", WorkOrder{Status: StatusCanceled}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AllowedActions(tc.wo))
		})
	}
	assert.False(t, Allowed(WorkOrder{Status: StatusClosed}, ActionClose))
	assert.True(t, Allowed(WorkOrder{Status: StatusCompleted}, ActionClose))
}

func TestCounts(t *testing.T) {
	active, pending := Counts([]WorkOrder{
		{Status: StatusOpen}, {Status: StatusOpen}, {Status: StatusAssigned},
		{Status: StatusInProgress}, {Status: StatusClosed}, {Status: StatusCompleted},
	})
	assert.Equal(t, 2, active)
	assert.Equal(t, 2, pending)
}

func TestLabelsAreExhaustive(t *testing.T) {
	for _, v := range Statuses.Values() {
		assert.NotEmpty(t, v.Label(), v)
	}
	for _, v := range Priorities.Values() {
		assert.NotEmpty(t, v.Label(), v)
	}
	for _, v := range Types.Values() {
		assert.NotEmpty(t, v.Label(), v)
	}
	assert.True(t, StatusCanceled.Terminal())
	assert.False(t, StatusCompleted.Terminal())
}

func newRepo(t *testing.T, f *testutil.FakeAPI) *Repo {
	t.Helper()
	c, err := api.New(f.BaseURL(), testutil.LoggedIn(t, "a1", "r1"))
	require.NoError(t, err)
	return NewRepo(c)
}

func TestComplete_RequiresActionsTaken(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	_, err := newRepo(t, f).Complete(context.Background(), 3, CompleteInput{ActionsTaken: "   "})
	require.Error(t, err)
	assert.Equal(t, 0, f.TotalHits())
}

func TestComplete_DefaultsNumbers(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	var body map[string]any
	f.Router.Post("/api/workorders/3/complete/", func(w http.ResponseWriter, r *http.Request) {
		if !testutil.Decode(w, r, &body) {
			return
		}
		testutil.JSON(w, http.StatusOK, map[string]any{"id": 3, "status": "completed", "wo_type": "CM", "priority": "high"})
	})
	wo, err := newRepo(t, f).Complete(context.Background(), 3, CompleteInput{ActionsTaken: " заменён подшипник ", LaborHours: "1.5"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, wo.Status)
	assert.Equal(t, "заменён подшипник", body["actions_taken"])
	assert.Equal(t, float64(0), body["downtime_minutes"])
	assert.Equal(t, 1.5, body["labor_hours"])
}

func TestAssign(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	var body map[string]int64
	f.Router.Post("/api/workorders/9/assign/", func(w http.ResponseWriter, r *http.Request) {
		if !testutil.Decode(w, r, &body) {
			return
		}
		testutil.JSON(w, http.StatusOK, map[string]any{"id": 9, "status": "assigned", "wo_type": "PM", "priority": "low"})
	})
	repo := newRepo(t, f)
	wo, err := repo.Assign(context.Background(), 9, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, wo.Status)
	assert.Equal(t, map[string]int64{"assignee_id": 4}, body)

	_, err = repo.Assign(context.Background(), 9, 0)
	assert.Error(t, err)
}

func TestStart_ServerRejects(t *testing.T) {
	f := testutil.NewFakeAPI(t)
	f.Router.Post("/api/workorders/2/start/", func(w http.ResponseWriter, r *http.Request) {
		testutil.JSON(w, http.StatusBadRequest, map[string]string{"error": "Work order cannot be started in current status: closed"})
	})
	_, err := newRepo(t, f).Start(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	assert.Contains(t, err.Error(), "cannot be started")
}
