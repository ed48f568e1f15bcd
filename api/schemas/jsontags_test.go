package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/trackrunner/api/schemas"
)

// TestStructJSONTags verifies the json tags consumed by the calling backend.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "ResultRecord",
			structRef: schemas.ResultRecord{},
			expectedTags: map[string]string{
				"Identifier": "fcr_number",
				"Status":     "status",
				"File":       "pdf_file,omitempty",
				"Error":      "error,omitempty",
			},
		},
		{
			name:      "Outcome",
			structRef: schemas.Outcome{},
			expectedTags: map[string]string{
				"RunID":          "run_id",
				"Script":         "script",
				"InputFile":      "input_file",
				"Success":        "success",
				"Results":        "results",
				"CombinedReport": "combined_report,omitempty",
				"StartedAt":      "started_at",
				"FinishedAt":     "finished_at",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			typ := reflect.TypeOf(tc.structRef)
			for i := 0; i < typ.NumField(); i++ {
				field := typ.Field(i)
				expected, ok := tc.expectedTags[field.Name]
				if !assert.True(t, ok, "unexpected field %s", field.Name) {
					continue
				}
				assert.Equal(t, expected, field.Tag.Get("json"), "json tag for %s.%s", tc.name, field.Name)
			}
		})
	}
}
