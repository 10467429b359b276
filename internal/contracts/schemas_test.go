package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFromPath(t *testing.T) {
	assert.Equal(t, "DealSheetReadyEvent/1.0.0", keyFromPath("events/deal-sheet-ready/v1.json"))
	assert.Equal(t, "UnderwriteRequest/2.0.0", keyFromPath("requests/underwrite/v2.json"))
	assert.Equal(t, "", keyFromPath("other/x/v1.json"))
	assert.Equal(t, "", keyFromPath("events/v1.json"))
}

func TestValidate_UnderwriteBatchTask(t *testing.T) {
	valid := []byte(`{
		"task_id": "5b0e1c9a-3f1d-4d1e-9a57-0c9f3f0f6a11",
		"properties": [{"address": "12 Elm St", "zip": "46205", "bedrooms": 3, "list_price": 85000}]
	}`)
	require.NoError(t, Validate(UnderwriteBatchTaskEvent, VersionV1, valid))

	missingPrice := []byte(`{
		"task_id": "5b0e1c9a-3f1d-4d1e-9a57-0c9f3f0f6a11",
		"properties": [{"address": "12 Elm St", "zip": "46205"}]
	}`)
	assert.Error(t, Validate(UnderwriteBatchTaskEvent, VersionV1, missingPrice))

	badUUID := []byte(`{"task_id": "nope", "properties": [{"address": "a", "zip": "46205", "list_price": 1}]}`)
	assert.Error(t, Validate(UnderwriteBatchTaskEvent, VersionV1, badUUID))
}

func TestValidate_UnknownContractAndBadJSON(t *testing.T) {
	assert.Error(t, Validate("MissingEvent", VersionV1, []byte(`{}`)))
	assert.Error(t, Validate(UnderwriteRequest, VersionV1, []byte(`{`)))
	assert.Error(t, Validate(UnderwriteRequest, VersionV1, []byte(`{"properties": []}`)))
}
