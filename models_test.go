package azure2openai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelTable_Deployment(t *testing.T) {
	table := NewModelTable(
		ModelMapping{Name: ModelGPT35, Deployment: "gpt35-prod"},
		ModelMapping{Name: ModelEmbeddingAda, Deployment: ""},
	)

	dep, ok := table.Deployment(ModelGPT35)
	require.True(t, ok)
	require.Equal(t, "gpt35-prod", dep)

	// 已登记但未配置 deployment，请求期按未映射处理。
	_, ok = table.Deployment(ModelEmbeddingAda)
	require.False(t, ok)

	_, ok = table.Deployment("unknown-model")
	require.False(t, ok)

	require.Equal(t, 2, table.Len())
}

func TestModelTable_LaterMappingOverridesKeepsOrder(t *testing.T) {
	table := NewModelTable(
		ModelMapping{Name: "a", Deployment: "a1"},
		ModelMapping{Name: "b", Deployment: "b1"},
		ModelMapping{Name: "a", Deployment: "a2"},
		ModelMapping{Name: "  ", Deployment: "ignored"},
	)

	require.Equal(t, []ModelMapping{
		{Name: "a", Deployment: "a2"},
		{Name: "b", Deployment: "b1"},
	}, table.Models())
}

func TestModelTable_Nil(t *testing.T) {
	var table *ModelTable
	_, ok := table.Deployment(ModelGPT35)
	require.False(t, ok)
	require.Zero(t, table.Len())
	require.Nil(t, table.Models())
}

func TestParseModelMapper(t *testing.T) {
	got, err := ParseModelMapper(" gpt-4=gpt4-dep , gpt-4o=4o ,")
	require.NoError(t, err)
	require.Equal(t, []ModelMapping{
		{Name: "gpt-4", Deployment: "gpt4-dep"},
		{Name: "gpt-4o", Deployment: "4o"},
	}, got)

	got, err = ParseModelMapper("")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = ParseModelMapper("gpt-4")
	require.Error(t, err)
	_, err = ParseModelMapper("=dep")
	require.Error(t, err)
}
