package program

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"downloaded", StatusDownloaded, false},
		{"in-progress", StatusInProgress, false},
		{" Error ", StatusError, false},
		{"REMOVED", StatusRemoved, false},
		{"", "", true},
		{"DONE", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		S Status `json:"s"`
	}{StatusInProgress})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"IN_PROGRESS"}`, string(data))

	var out struct {
		S Status `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"REMOVED"}`), &out))
	assert.Equal(t, StatusRemoved, out.S)

	assert.Error(t, json.Unmarshal([]byte(`{"s":"BOGUS"}`), &out))

	_, err = json.Marshal(struct{ S Status }{Status("BOGUS")})
	assert.Error(t, err)
}

func TestStatus_Labels(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid())
		assert.NotEqual(t, "Unknown", s.Label(), s)
	}
	assert.Equal(t, "Unknown", Status("x").Label())
}
