package openaiapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModelList_Shape(t *testing.T) {
	list := NewModelList([]string{"gpt-3.5-turbo", "gpt-4"})
	require.Equal(t, "list", list.Object)
	require.Len(t, list.Data, 2)

	data, err := json.Marshal(list)
	require.NoError(t, err)

	var raw struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	first := raw.Data[0]
	require.Equal(t, "gpt-3.5-turbo", first["id"])
	require.Equal(t, "model", first["object"])
	require.Equal(t, "openai", first["owned_by"])
	require.Equal(t, "gpt-3.5-turbo", first["root"])
	require.Contains(t, first, "parent")
	require.Nil(t, first["parent"])
	require.EqualValues(t, ModelCreatedAt, first["created"])

	perms, ok := first["permission"].([]any)
	require.True(t, ok)
	require.Len(t, perms, 1)
	perm := perms[0].(map[string]any)
	require.Equal(t, "model_permission", perm["object"])
	require.Equal(t, "*", perm["organization"])
	require.Nil(t, perm["group"])
}

func TestNewChatCompletionID(t *testing.T) {
	id := NewChatCompletionID()
	require.True(t, strings.HasPrefix(id, "chatcmpl-"))
	require.Len(t, id, len("chatcmpl-")+8)
}

func TestToChatChunk_OmitsEmptyContent(t *testing.T) {
	stop := "stop"
	data, err := json.Marshal(ToChatChunk("id", "m", "", &stop))
	require.NoError(t, err)
	require.NotContains(t, string(data), `"content"`)

	data, err = json.Marshal(ToChatChunk("id", "m", "hi", nil))
	require.NoError(t, err)
	require.Contains(t, string(data), `"content":"hi"`)
}
