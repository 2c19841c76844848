package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Key drift would break log queries, so the names are pinned here.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		val  string
	}{
		{RunID("abc"), KeyRunID, "abc"},
		{Stage("generate_sdk"), KeyStage, "generate_sdk"},
		{Target("stage"), KeyTarget, "stage"},
		{Version("v0.4.17"), KeyVersion, "v0.4.17"},
		{Branch("dev"), KeyBranch, "dev"},
		{Repository("pixeltable/pixeltable"), KeyRepo, "pixeltable/pixeltable"},
		{Path("/tmp/x"), KeyPath, "/tmp/x"},
		{URL("https://example.com"), KeyURL, "https://example.com"},
		{Page("sdk/latest/table"), KeyPage, "sdk/latest/table"},
		{Tool("quarto"), KeyTool, "quarto"},
		{Count(3), KeyCount, "3"},
		{Commit("deadbeef"), KeyCommit, "deadbeef"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.key, tc.attr.Key)
		assert.Equal(t, tc.val, tc.attr.Value.String())
	}
}

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}
