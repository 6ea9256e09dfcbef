package jsoncfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dataprep/internal/domain"
)

// SplitJSON is the wire form of a train/test split request. Ratios are percentages.
type SplitJSON struct {
	TrainRatio *float64 `json:"train_ratio"`
	TestRatio  *float64 `json:"test_ratio,omitempty"`
}

// TaskJSON is the wire form of one task of a /data_prep batch.
type TaskJSON struct {
	Name            string     `json:"name"`
	Augmentations   ChainJSON  `json:"augmentations"`
	TrainTestSplit  *SplitJSON `json:"train_test_split,omitempty"`
	TargetImageSize []int      `json:"target_image_size,omitempty"`
	// InputImageSize is the legacy spelling of TargetImageSize.
	InputImageSize []int `json:"input_image_size,omitempty"`
}

// ChainJSON is an ordered augmentation chain. Each array element is either an
// object keyed by augmentation kind ({"CROP": {...}}), in which case every key
// becomes one chain entry in document order, or an explicit
// {"kind": "CROP", "args": {...}} object.
type ChainJSON []domain.AugmentationUse

// UnmarshalJSON decodes the chain while preserving object key order, which a
// plain map decode would lose.
func (c *ChainJSON) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("augmentations must be an array: %w", err)
	}
	chain := make(ChainJSON, 0, len(elems))
	for i, raw := range elems {
		uses, err := decodeChainElement(raw)
		if err != nil {
			return fmt.Errorf("augmentations[%d]: %w", i, err)
		}
		chain = append(chain, uses...)
	}
	*c = chain
	return nil
}

// MarshalJSON writes the explicit {"kind","args"} form.
func (c ChainJSON) MarshalJSON() ([]byte, error) {
	type explicit struct {
		Kind string         `json:"kind"`
		Args map[string]any `json:"args"`
	}
	out := make([]explicit, 0, len(c))
	for _, use := range c {
		out = append(out, explicit{Kind: use.Kind, Args: use.Args})
	}
	return json.Marshal(out)
}

type rawField struct {
	key   string
	value json.RawMessage
}

func decodeChainElement(raw json.RawMessage) ([]domain.AugmentationUse, error) {
	fields, err := orderedFields(raw)
	if err != nil {
		return nil, err
	}
	if use, ok, err := explicitUse(fields); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return []domain.AugmentationUse{use}, nil
	}
	uses := make([]domain.AugmentationUse, 0, len(fields))
	for _, f := range fields {
		args, err := decodeArgs(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		uses = append(uses, domain.AugmentationUse{Kind: f.key, Args: args})
	}
	return uses, nil
}

func explicitUse(fields []rawField) (domain.AugmentationUse, bool, error) {
	var kindRaw, argsRaw json.RawMessage
	for _, f := range fields {
		switch f.key {
		case "kind":
			kindRaw = f.value
		case "args":
			argsRaw = f.value
		default:
			return domain.AugmentationUse{}, false, nil
		}
	}
	var kind string
	if kindRaw == nil || json.Unmarshal(kindRaw, &kind) != nil {
		return domain.AugmentationUse{}, false, nil
	}
	if kind == "" {
		return domain.AugmentationUse{}, true, errors.New("kind is empty")
	}
	args, err := decodeArgs(argsRaw)
	if err != nil {
		return domain.AugmentationUse{}, true, fmt.Errorf("%s: %w", kind, err)
	}
	return domain.AugmentationUse{Kind: kind, Args: args}, true, nil
}

func orderedFields(raw json.RawMessage) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("element must be an object")
	}
	var fields []rawField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key must be a string")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, rawField{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, errors.New("args must be an object")
	}
	return args, nil
}

// ToDomain converts the wire form into a TaskRequest. Missing mandatory
// fields are not an error here; the dispatcher rejects them as a batch.
func (t TaskJSON) ToDomain() (domain.TaskRequest, error) {
	req := domain.TaskRequest{Name: t.Name}
	if t.Augmentations != nil {
		req.Augmentations = []domain.AugmentationUse(t.Augmentations)
	}
	if t.TrainTestSplit != nil {
		req.Split = &domain.SplitRatio{
			TrainPercent: t.TrainTestSplit.TrainRatio,
			TestPercent:  t.TrainTestSplit.TestRatio,
		}
		if err := validatePercent("train_ratio", req.Split.TrainPercent); err != nil {
			return domain.TaskRequest{}, err
		}
		if err := validatePercent("test_ratio", req.Split.TestPercent); err != nil {
			return domain.TaskRequest{}, err
		}
	}
	size := t.TargetImageSize
	if len(size) == 0 {
		size = t.InputImageSize
	}
	if len(size) > 0 {
		if len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
			return domain.TaskRequest{}, fmt.Errorf("target_image_size must be [width, height], got %v", size)
		}
		req.TargetSize = &domain.ImageSize{Width: size[0], Height: size[1]}
	}
	return req, nil
}

func validatePercent(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %v", field, *v)
	}
	return nil
}

// ParseTasks decodes a /data_prep body: a JSON array of tasks.
func ParseTasks(body []byte) ([]domain.TaskRequest, error) {
	var wire []TaskJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make([]domain.TaskRequest, 0, len(wire))
	for i, w := range wire {
		task, err := w.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
