package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
)

const FileName = "file"

// File reads jobs from a local JSON file holding either an array of job
// objects or an object with a "jobs" array. Values are loosely typed: salaries
// may be strings and work modes free-form.
type File struct {
	Path   string
	logger *zap.Logger
}

func NewFile(path string, logger *zap.Logger) *File {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{Path: path, logger: logger}
}

func (f *File) Name() string { return FileName + ":" + f.Path }

func (f *File) Fetch(ctx context.Context) ([]jobs.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}

	items, err := rawItems(data)
	if err != nil {
		return nil, fmt.Errorf("parsing jobs file %s: %w", f.Path, err)
	}

	out := make([]jobs.Job, 0, len(items))
	for i, item := range items {
		job, err := decodeJob(item)
		if err != nil {
			f.logger.Warn("skipping malformed job", zap.Int("index", i), zap.Error(err))
			continue
		}
		if job.Source == "" {
			job.Source = FileName
		}
		job.Normalize()
		out = append(out, job)
	}
	return out, nil
}

func rawItems(data []byte) ([]map[string]interface{}, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var items []map[string]interface{}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var wrapped struct {
		Jobs []map[string]interface{} `json:"jobs"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Jobs, nil
}

func decodeJob(item map[string]interface{}) (jobs.Job, error) {
	var job jobs.Job
	cfg := &mapstructure.DecoderConfig{
		Result:           &job,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			workModeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return job, err
	}
	if err := decoder.Decode(item); err != nil {
		return job, err
	}
	return job, nil
}

func workModeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(jobs.WorkModeUnknown) {
		return data, nil
	}
	mode := jobs.ParseWorkMode(data.(string))
	if mode == jobs.WorkModeAny {
		return jobs.WorkModeUnknown, nil
	}
	return mode, nil
}
