package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/softdesk/internal/apperror"
)

func TestValidateInput_UsesJSONNames(t *testing.T) {
	err := validateInput(CreateProjectInput{})
	require.ErrorIs(t, err, apperror.ErrValidation)

	fields := fieldErrors(t, err)
	assert.Equal(t, []string{"This field is required."}, fields["name"])
	assert.Equal(t, []string{"This field is required."}, fields["type"])
	assert.NotContains(t, fields, "Name")
}

func TestValidateInput_Messages(t *testing.T) {
	err := validateInput(RegisterInput{Username: "ok", Password: "correct-horse", Age: intPtr(200)})
	require.Error(t, err)
	assert.Equal(t, []string{"Ensure this value is less than or equal to 120."}, fieldErrors(t, err)["age"])

	err = validateInput(CreateIssueInput{Title: "x", Priority: "URGENT", Tag: "BUG"})
	require.Error(t, err)
	assert.Equal(t, []string{`"URGENT" is not a valid choice.`}, fieldErrors(t, err)["priority"])
}

func TestNullableString(t *testing.T) {
	tests := []struct {
		body      string
		wantSet   bool
		wantClear bool
	}{
		{`{}`, false, false},
		{`{"v":null}`, true, true},
		{`{"v":""}`, true, true},
		{`{"v":"abc"}`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var in struct {
				V NullableString `json:"v"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.wantSet, in.V.Set)
			assert.Equal(t, tt.wantClear, in.V.Clear())
		})
	}

	var in struct {
		V NullableString `json:"v"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"v":12}`), &in))
}
