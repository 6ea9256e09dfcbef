package jsoncfg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTasksPreservesChainOrder(t *testing.T) {
	body := []byte(`[{
		"name": "MotoGP",
		"augmentations": [
			{"CROP": {"crop_dimensions": [[240, 240]], "crop_type": "left_down_center"},
			 "RANDOM_CROP": {"crop_dimensions": [80, 80], "target_count": 3}},
			{"kind": "FLIP", "args": {"direction": "vertical"}}
		],
		"train_test_split": {"train_ratio": 70},
		"input_image_size": [480, 270]
	}]`)

	tasks, err := ParseTasks(body)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, "MotoGP", task.Name)
	require.Len(t, task.Augmentations, 3)
	assert.Equal(t, "CROP", task.Augmentations[0].Kind)
	assert.Equal(t, "RANDOM_CROP", task.Augmentations[1].Kind)
	assert.Equal(t, "FLIP", task.Augmentations[2].Kind)
	assert.Equal(t, "left_down_center", task.Augmentations[0].Args["crop_type"])
	assert.Equal(t, "vertical", task.Augmentations[2].Args["direction"])

	require.NotNil(t, task.Split)
	require.NotNil(t, task.TrainPercent())
	assert.InDelta(t, 70, *task.TrainPercent(), 0.0001)
	require.NotNil(t, task.TargetSize)
	assert.Equal(t, 480, task.TargetSize.Width)
	assert.Equal(t, 270, task.TargetSize.Height)
}

func TestParseTasksMissingFieldsAreNotParseErrors(t *testing.T) {
	tasks, err := ParseTasks([]byte(`[{"name": "MotoGP"}, {"augmentations": []}]`))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Nil(t, tasks[0].Augmentations)
	assert.False(t, tasks[0].Valid())

	assert.NotNil(t, tasks[1].Augmentations)
	assert.Empty(t, tasks[1].Augmentations)
	assert.False(t, tasks[1].Valid())
}

func TestParseTasksRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"not json":           `{{`,
		"object not array":   `{"name": "x"}`,
		"chain not array":    `[{"name": "x", "augmentations": {"CROP": {}}}]`,
		"element not object": `[{"name": "x", "augmentations": ["CROP"]}]`,
		"args not object":    `[{"name": "x", "augmentations": [{"CROP": [1, 2]}]}]`,
		"bad size":           `[{"name": "x", "augmentations": [], "target_image_size": [10]}]`,
		"ratio out of range": `[{"name": "x", "augmentations": [], "train_test_split": {"train_ratio": 170}}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTasks([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestChainJSONNullArgsBecomeEmptyMap(t *testing.T) {
	var chain ChainJSON
	require.NoError(t, json.Unmarshal([]byte(`[{"FLIP": null}]`), &chain))
	require.Len(t, chain, 1)
	assert.NotNil(t, chain[0].Args)
	assert.Empty(t, chain[0].Args)
}

func TestChainJSONMarshalRoundTripsThroughExplicitForm(t *testing.T) {
	in := ChainJSON{{Kind: "CROP", Args: map[string]any{"crop_type": "left_down_center"}}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out ChainJSON
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "CROP", out[0].Kind)
	assert.Equal(t, "left_down_center", out[0].Args["crop_type"])
}
